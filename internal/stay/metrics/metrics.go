package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for bed allocation.
type Metrics struct {
	StaysCreated        prometheus.Counter
	AllocationConflicts prometheus.Counter
}

// New creates a new Metrics instance with all stay module metrics registered.
func New() *Metrics {
	return &Metrics{
		StaysCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseworks_stays_created_total",
			Help: "Total number of stays created",
		}),
		AllocationConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseworks_stay_allocation_conflicts_total",
			Help: "Total stay creations rejected because a bed or beneficiary was already occupied",
		}),
	}
}

// IncrementStaysCreated records a successful allocation.
func (m *Metrics) IncrementStaysCreated() {
	m.StaysCreated.Inc()
}

// IncrementAllocationConflicts records a rejected allocation.
func (m *Metrics) IncrementAllocationConflicts() {
	m.AllocationConflicts.Inc()
}
