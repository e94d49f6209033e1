package gateway

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks conversation counters on a private Prometheus registry,
// exposed at /metrics.
type Metrics struct {
	registry *prometheus.Registry

	turnsTotal      prometheus.Counter
	turnErrors      prometheus.Counter
	turnDuration    prometheus.Histogram
	sessionsCreated prometheus.Counter
}

// NewMetrics creates a Metrics with all collectors registered.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		turnsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "parley_turns_total",
			Help: "Completed conversation turns.",
		}),
		turnErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "parley_turn_errors_total",
			Help: "Conversation turns that failed at the provider.",
		}),
		turnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "parley_turn_duration_seconds",
			Help:    "Full turn latency including the provider round trip.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		sessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "parley_sessions_created_total",
			Help: "Sessions started through the gateway.",
		}),
	}
}

// RecordTurn records a completed turn and its latency.
func (m *Metrics) RecordTurn(latency time.Duration) {
	m.turnsTotal.Inc()
	m.turnDuration.Observe(latency.Seconds())
}

// RecordTurnError records a turn that failed at the provider.
func (m *Metrics) RecordTurnError() {
	m.turnErrors.Inc()
}

// RecordSessionCreated records a new session started through the gateway.
func (m *Metrics) RecordSessionCreated() {
	m.sessionsCreated.Inc()
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
