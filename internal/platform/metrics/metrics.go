// Package metrics exposes Prometheus instrumentation for the HTTP API and
// the study session event stream.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/study-buddy/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors, registered on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	events       *prometheus.CounterVec
}

// New creates and registers the collectors. liveSessions, when non-nil, is
// sampled on every scrape.
func New(liveSessions func() int) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studybuddy_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		httpLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studybuddy_http_request_duration_seconds",
			Help:    "Request latency",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"method", "route"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studybuddy_session_events_total",
			Help: "Study session events by type",
		}, []string{"type"}),
	}
	if liveSessions != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "studybuddy_live_sessions",
			Help: "Sessions currently held in memory",
		}, func() float64 { return float64(liveSessions()) })
	}
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(seconds float64) {
			m.httpLatency.WithLabelValues(r.Method, routePattern(r)).Observe(seconds)
		}))

		next.ServeHTTP(ww, r)

		timer.ObserveDuration()
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, routePattern(r), strconv.Itoa(status)).Inc()
	})
}

// HandleEvent counts session events. It implements events.EventHandler.
func (m *Metrics) HandleEvent(_ context.Context, event *events.SessionEvent) error {
	m.events.WithLabelValues(event.Type).Inc()
	return nil
}

var _ events.EventHandler = (*Metrics)(nil)

// routePattern avoids unbounded label values from raw paths.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
