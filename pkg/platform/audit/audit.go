// Package audit records who changed what. Every successful mutation in the
// core emits one event; events flow through a publisher to a store, keeping
// the hot path non-blocking.
package audit

import (
	"context"
	"time"

	id "caseworks/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	// ActorID is the authenticated user who performed the action.
	ActorID id.UserID
	// Action names what happened (see the Event* constants).
	Action string
	// Subject is the id of the record acted upon.
	Subject string
	// Detail carries a short human-readable annotation (amounts, bed moved
	// to, auto-close reason). Never used programmatically.
	Detail string
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string
}

// Action names, one per successful mutation in the core.
const (
	EventStayCreated = "stay_created"
	EventStayUpdated = "stay_updated"
	EventStayDeleted = "stay_deleted"

	EventBudgetCreated   = "budget_created"
	EventBudgetUpdated   = "budget_updated"
	EventBudgetDeleted   = "budget_deleted"
	EventExpenseRecorded = "expense_recorded"
	EventRevenueRecorded = "revenue_recorded"

	EventSessionStarted    = "session_started"
	EventSessionEnded      = "session_ended"
	EventSessionAutoClosed = "session_auto_closed"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actorID id.UserID) ([]Event, error)
}

// Publisher accepts events from domain services. Implementations must not
// block request handling.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
