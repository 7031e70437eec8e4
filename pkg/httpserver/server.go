package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/eshtarek/storefront/pkg/logger"
)

// Server serves one handler until its context ends, the process is
// interrupted or Shutdown is called. A Server runs at most once.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	onStart    []func(net.Addr)
	onShutdown []func()

	mu      sync.Mutex
	srv     *http.Server
	addr    net.Addr
	stopped chan struct{}
	stop    sync.Once
}

// New creates a Server. Zero fields of cfg fall back to defaults.
func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg.withDefaults(),
		logger:  logger.Discard(),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run binds the listener and serves handler. Bind and serve failures are
// wrapped with ErrStart; a nil handler answers 404.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	ln, srv, err := s.bind(handler)
	if err != nil {
		return errors.Join(ErrStart, err)
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s.logger.Info("http server listening", slog.String("addr", ln.Addr().String()))
	for _, fn := range s.onStart {
		fn(ln.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Join(ErrStart, err)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.stopped:
		}
		return s.Shutdown(context.Background())
	})
	return g.Wait()
}

// Addr returns the bound address, or nil before Run has bound it.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown drains open connections for at most the configured shutdown
// timeout, then closes whatever is left. Only the first call does any work;
// calling it before Run is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	var err error
	s.stop.Do(func() {
		close(s.stopped)

		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		if err = srv.Shutdown(ctx); err != nil {
			s.logger.Warn("drain timed out, closing connections", logger.Error(err))
			err = errors.Join(ErrShutdown, err, srv.Close())
			return
		}
		s.logger.Info("http server stopped")
	})
	return err
}

func (s *Server) bind(handler http.Handler) (net.Listener, *http.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return nil, nil, ErrAlreadyRunning
	}
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return nil, nil, err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		MaxHeaderBytes:    s.cfg.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	for _, fn := range s.onShutdown {
		srv.RegisterOnShutdown(fn)
	}
	s.srv = srv
	s.addr = ln.Addr()
	return ln, srv, nil
}
