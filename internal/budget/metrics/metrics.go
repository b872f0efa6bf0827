package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the budget ledger.
type Metrics struct {
	BudgetsCreated   prometheus.Counter
	ExpensesRecorded prometheus.Counter
	ExpensesRejected prometheus.Counter
	RevenuesRecorded prometheus.Counter
}

// New creates a new Metrics instance with all budget module metrics registered.
func New() *Metrics {
	return &Metrics{
		BudgetsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseworks_budgets_created_total",
			Help: "Total number of budgets created",
		}),
		ExpensesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseworks_expenses_recorded_total",
			Help: "Total number of expenses recorded",
		}),
		ExpensesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseworks_expenses_rejected_total",
			Help: "Total expenses rejected for exceeding the remaining budget",
		}),
		RevenuesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseworks_revenues_recorded_total",
			Help: "Total number of revenues recorded",
		}),
	}
}

// IncrementBudgetsCreated records a new budget.
func (m *Metrics) IncrementBudgetsCreated() {
	m.BudgetsCreated.Inc()
}

// IncrementExpensesRecorded records a posted expense.
func (m *Metrics) IncrementExpensesRecorded() {
	m.ExpensesRecorded.Inc()
}

// IncrementExpensesRejected records an overspend rejection.
func (m *Metrics) IncrementExpensesRejected() {
	m.ExpensesRejected.Inc()
}

// IncrementRevenuesRecorded records a posted revenue.
func (m *Metrics) IncrementRevenuesRecorded() {
	m.RevenuesRecorded.Inc()
}
