// nationportal/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for logins, document mutations and sessions.
// Each instance owns its registry so several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// Login attempts by role and result
	Logins *prometheus.CounterVec

	// Document mutations by operation and result
	Mutations *prometheus.CounterVec

	// Duration of document mutations including the save
	MutationLatency *prometheus.HistogramVec

	ActiveSessions prometheus.Gauge
}

// New creates a Metrics instance with all portal metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_logins_total",
			Help: "Login attempts by role and result",
		}, []string{"role", "result"}), // role: "admin", "citizen"

		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_mutations_total",
			Help: "Document mutations by operation and result",
		}, []string{"op", "result"}),

		MutationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_mutation_duration_seconds",
			Help:    "Duration of document mutations including persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "portal_active_sessions",
			Help: "Number of live portal sessions",
		}),
	}
}

// ObserveLogin records one login attempt.
func (m *Metrics) ObserveLogin(role string, err error) {
	if m != nil {
		m.Logins.WithLabelValues(role, result(err)).Inc()
	}
}

// ObserveMutation records the outcome and duration of one mutation.
func (m *Metrics) ObserveMutation(op string, err error, d time.Duration) {
	if m != nil {
		m.Mutations.WithLabelValues(op, result(err)).Inc()
		m.MutationLatency.WithLabelValues(op).Observe(d.Seconds())
	}
}

// SetActiveSessions matches session.WithActiveObserver.
func (m *Metrics) SetActiveSessions(n int) {
	if m != nil {
		m.ActiveSessions.Set(float64(n))
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
