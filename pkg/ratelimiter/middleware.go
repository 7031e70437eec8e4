package ratelimiter

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eshtarek/storefront/pkg/logger"
)

// KeyFunc returns the bucket key of a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middleware)

// WithMiddlewareLogger sets the logger used for store failures.
func WithMiddlewareLogger(l *slog.Logger) MiddlewareOption {
	return func(m *middleware) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithOnLimited is called for every rejected request.
func WithOnLimited(fn func(r *http.Request)) MiddlewareOption {
	return func(m *middleware) { m.onLimited = fn }
}

type middleware struct {
	bucket    *Bucket
	key       KeyFunc
	logger    *slog.Logger
	onLimited func(r *http.Request)
	now       func() time.Time
}

// Middleware rejects requests over the limit with 429 and reports the
// bucket state in X-RateLimit-* headers. Store failures let the request
// through.
func Middleware(b *Bucket, key KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	m := &middleware{bucket: b, key: key, logger: logger.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("ratelimiter"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := m.key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}
			res, err := m.bucket.Allow(r.Context(), k)
			if err != nil {
				m.logger.WarnContext(r.Context(), "rate limit check failed", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				if m.onLimited != nil {
					m.onLimited(r)
				}
				retry := int((res.RetryAfter(m.now()) + time.Second - 1) / time.Second)
				h.Set("Retry-After", strconv.Itoa(max(retry, 1)))
				http.Error(w, "rate_limited", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
