package httpserver

import (
	"log/slog"
	"net"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Net/http's own error log is routed
// through it at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// OnStart registers fn to run once the listener is bound.
func OnStart(fn func(addr net.Addr)) Option {
	if fn == nil {
		panic("httpserver: nil start hook")
	}
	return func(s *Server) { s.onStart = append(s.onStart, fn) }
}

// OnShutdown registers fn to run as soon as shutdown begins, while open
// connections are still draining. Use it to end long-lived responses so the
// drain does not wait for the timeout.
func OnShutdown(fn func()) Option {
	if fn == nil {
		panic("httpserver: nil shutdown hook")
	}
	return func(s *Server) { s.onShutdown = append(s.onShutdown, fn) }
}
