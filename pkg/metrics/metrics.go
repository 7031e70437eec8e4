// Package metrics exposes Prometheus collectors for storefront activity:
// page lifecycle, session and checkout outcomes, throttled requests and
// subscription backend latency.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "eshtarek"
	subsystem = "storefront"
)

// Checkout outcomes.
const (
	CheckoutRequested = "requested"
	CheckoutCreated   = "created"
	CheckoutFailed    = "failed"
	CheckoutCompleted = "completed"
)

// Metrics holds the storefront collectors. A nil *Metrics records nothing.
type Metrics struct {
	pagesOpened prometheus.Counter
	pagesActive prometheus.Gauge
	sessions    *prometheus.CounterVec
	checkouts   *prometheus.CounterVec
	rateLimited prometheus.Counter
	backend     *prometheus.HistogramVec
}

// MustNew registers the collectors with reg, reusing collectors that are
// already registered. Panics on any other registration error.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		pagesOpened: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pages_opened_total",
			Help:      "Product pages rendered.",
		})),
		pagesActive: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pages_active",
			Help:      "Product pages currently held in the registry.",
		})),
		sessions: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_total",
			Help:      "Session initializations by result.",
		}, []string{"result"})),
		checkouts: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkouts_total",
			Help:      "Checkout activity by outcome.",
		}, []string{"outcome"})),
		rateLimited: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		})),
		backend: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of subscription backend requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method"})),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// PageOpened counts a new page.
func (m *Metrics) PageOpened() {
	if m == nil {
		return
	}
	m.pagesOpened.Inc()
	m.pagesActive.Inc()
}

// PageClosed counts a page leaving the registry.
func (m *Metrics) PageClosed() {
	if m == nil {
		return
	}
	m.pagesActive.Dec()
}

// Session records a session initialization result.
func (m *Metrics) Session(ok bool) {
	if m == nil {
		return
	}
	result := "ready"
	if !ok {
		result = "error"
	}
	m.sessions.WithLabelValues(result).Inc()
}

// Checkout records a checkout outcome.
func (m *Metrics) Checkout(outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
}

// RateLimited counts a throttled request.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// InstrumentTransport times every request sent through next. A nil next
// means http.DefaultTransport.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if m == nil {
		return next
	}
	return promhttp.InstrumentRoundTripperDuration(m.backend, next)
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
