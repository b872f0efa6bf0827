package worker

import (
	"context"
	"log/slog"

	audit "caseworks/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. A store
// failure is logged and the worker keeps draining; audit loss is preferable
// to backing up the mutation path.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func New(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes events until ctx is cancelled, then flushes whatever is still
// buffered before returning so shutdown loses no accepted events.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

// drain persists buffered events with a fresh context; the run context is
// already cancelled by the time we get here.
func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.append(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event audit.Event) {
	if err := w.store.Append(ctx, event); err != nil {
		if w.logger != nil {
			w.logger.ErrorContext(ctx, "audit append failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
}
