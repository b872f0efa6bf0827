package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for time tracking.
type Metrics struct {
	SessionsStarted     prometheus.Counter
	SessionsEnded       prometheus.Counter
	StaleSessionsClosed prometheus.Counter
}

// New creates a new Metrics instance with all session module metrics registered.
func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseworks_sessions_started_total",
			Help: "Total number of time sessions started",
		}),
		SessionsEnded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseworks_sessions_ended_total",
			Help: "Total number of time sessions ended explicitly",
		}),
		StaleSessionsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseworks_sessions_stale_closed_total",
			Help: "Total abandoned sessions auto-closed by a later start",
		}),
	}
}

// IncrementSessionsStarted records a started session.
func (m *Metrics) IncrementSessionsStarted() {
	m.SessionsStarted.Inc()
}

// IncrementSessionsEnded records an explicitly ended session.
func (m *Metrics) IncrementSessionsEnded() {
	m.SessionsEnded.Inc()
}

// IncrementStaleSessionsClosed records an auto-closed stale session.
func (m *Metrics) IncrementStaleSessionsClosed() {
	m.StaleSessionsClosed.Inc()
}
