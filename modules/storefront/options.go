package storefront

import (
	"log/slog"
	"net/http"

	"github.com/eshtarek/storefront/handler"
	"github.com/eshtarek/storefront/pkg/checkout"
	"github.com/eshtarek/storefront/pkg/clientip"
	"github.com/eshtarek/storefront/pkg/metrics"
	"github.com/eshtarek/storefront/pkg/ratelimiter"
	"github.com/eshtarek/storefront/pkg/subscription"
)

// Option configures a Module.
type Option func(*Module)

// WithLogger sets the module logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithHTTPClient sets the client used to reach the subscription backend.
func WithHTTPClient(hc *http.Client) Option {
	return func(m *Module) {
		if hc != nil {
			m.clientOpts = append(m.clientOpts, subscription.WithHTTPClient(hc))
		}
	}
}

// WithCheckoutOptions appends options applied to every page's checkout
// controller.
func WithCheckoutOptions(opts ...checkout.Option) Option {
	return func(m *Module) {
		m.checkoutOpts = append(m.checkoutOpts, opts...)
	}
}

// WithErrorHandler replaces the handler reporting request failures.
func WithErrorHandler(h handler.ErrorHandler) Option {
	return func(m *Module) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithMetrics records page, session and checkout activity and times
// backend requests.
func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Module) {
		if mx != nil {
			m.metrics = mx
			m.clientOpts = append(m.clientOpts, subscription.WithTransport(mx.InstrumentTransport(nil)))
		}
	}
}

// WithRateLimiter throttles page actions per client address.
func WithRateLimiter(b *ratelimiter.Bucket) Option {
	return func(m *Module) { m.limiter = b }
}

// WithClientIP replaces the resolver used to find the client address.
func WithClientIP(res *clientip.Resolver) Option {
	return func(m *Module) {
		if res != nil {
			m.clientIP = res
		}
	}
}
