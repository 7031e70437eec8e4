package storefront

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eshtarek/storefront/handler"
	"github.com/eshtarek/storefront/pkg/cache"
	"github.com/eshtarek/storefront/pkg/checkout"
	"github.com/eshtarek/storefront/pkg/clientip"
	"github.com/eshtarek/storefront/pkg/i18n"
	"github.com/eshtarek/storefront/pkg/logger"
	"github.com/eshtarek/storefront/pkg/metrics"
	"github.com/eshtarek/storefront/pkg/ratelimiter"
	"github.com/eshtarek/storefront/pkg/requestid"
	"github.com/eshtarek/storefront/pkg/subscription"
)

var (
	ErrPageNotFound = handler.NewHTTPError(http.StatusNotFound, "page_not_found")
	ErrClosed       = handler.NewHTTPError(http.StatusServiceUnavailable, "storefront_closed")
)

// Module serves product pages. Every page load owns its own components;
// the module keeps the most recent ones in a bounded registry.
type Module struct {
	cfg          Config
	tr           *i18n.Translator
	languages    []string
	logger       *slog.Logger
	clientOpts   []subscription.Option
	checkoutOpts []checkout.Option
	errorHandler handler.ErrorHandler
	metrics      *metrics.Metrics
	limiter      *ratelimiter.Bucket
	clientIP     *clientip.Resolver

	pages  *cache.LRU[string, *Page]
	closed atomic.Bool
}

// New creates a Module. Panics if tr is nil.
func New(cfg Config, tr *i18n.Translator, opts ...Option) *Module {
	if tr == nil {
		panic("storefront: translator is required")
	}
	m := &Module{
		cfg:       cfg.normalized(),
		tr:        tr,
		languages: languagesOf(tr),
		logger:    logger.Discard(),
		clientIP:  clientip.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("storefront"))
	if m.errorHandler == nil {
		m.errorHandler = handler.NewErrorHandler(m.logger)
	}
	m.pages = cache.New(m.cfg.PageCapacity, cache.WithEvictCallback(func(_ string, p *Page) {
		p.Close()
	}))
	return m
}

// Handle returns the module router.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(m.clientIP.Middleware)
	r.Use(i18n.Middleware(m.tr, m.cfg.DefaultLocale,
		i18n.FromCookie(m.cfg.LocaleCookie),
		i18n.FromAcceptLanguage(m.tr),
	))
	m.routes(r)
	return r
}

// Page returns a live page by id.
func (m *Module) Page(id string) (*Page, bool) {
	return m.pages.Get(id)
}

// Pages reports the number of live pages.
func (m *Module) Pages() int {
	return m.pages.Len()
}

// Ready fails once the module is closed.
func (m *Module) Ready(context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Close closes every page. New pages are refused afterwards.
func (m *Module) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	m.pages.Clear()
	m.logger.Info("storefront closed")
	return nil
}

func (m *Module) open(ctx handler.Context, productID string) (*Page, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	p := newPage(uuid.NewString(), productID, ctx.Request().URL.Path, m.localizer(ctx), pageDeps{
		cfg:         m.cfg,
		log:         m.logger,
		clientOpts:  m.clientOpts,
		checkoutOps: m.checkoutOpts,
		metrics:     m.metrics,
	})
	m.pages.Put(p.ID(), p)
	m.metrics.PageOpened()
	p.Start()
	m.logger.DebugContext(ctx, "page opened",
		logger.PageID(p.ID()),
		logger.ProductID(productID),
		logger.RequestID(requestid.FromContext(ctx)),
		slog.String("client_ip", clientip.FromContext(ctx)),
	)
	return p, nil
}

func (m *Module) localizer(ctx context.Context) *i18n.Localizer {
	if loc, ok := i18n.LocalizerFromContext(ctx); ok {
		return loc
	}
	return i18n.NewLocalizer(m.tr, m.cfg.DefaultLocale)
}

func (m *Module) page(id string) (*Page, error) {
	p, ok := m.pages.Get(id)
	if !ok {
		return nil, ErrPageNotFound
	}
	return p, nil
}

// release removes and closes the page.
func (m *Module) release(id string) bool {
	return m.pages.Remove(id)
}

// throttle limits page actions when a rate limiter is configured.
func (m *Module) throttle(next http.Handler) http.Handler {
	if m.limiter == nil {
		return next
	}
	return ratelimiter.Middleware(m.limiter,
		func(r *http.Request) string { return clientip.FromContext(r.Context()) },
		ratelimiter.WithMiddlewareLogger(m.logger),
		ratelimiter.WithOnLimited(func(*http.Request) { m.metrics.RateLimited() }),
	)(next)
}
