package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "caseworks/pkg/domain"
	audit "caseworks/pkg/platform/audit"
	txcontext "caseworks/pkg/platform/tx"
)

// Store persists audit events in the audit_events table. When the context
// carries a transaction the append joins it, so an event written inside a
// unit of work disappears with a rollback.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (id, occurred_at, actor_id, action, subject, detail, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		uuid.UUID(event.ActorID),
		event.Action,
		event.Subject,
		event.Detail,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByActor(ctx context.Context, actorID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT occurred_at, actor_id, action, subject, detail, request_id
		FROM audit_events
		WHERE actor_id = $1
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(actorID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var event audit.Event
		var actor uuid.UUID
		if err := rows.Scan(&event.Timestamp, &actor, &event.Action, &event.Subject, &event.Detail, &event.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.ActorID = id.UserID(actor)
		events = append(events, event)
	}
	return events, rows.Err()
}
