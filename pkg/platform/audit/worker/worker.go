package worker

import (
	"context"
	"log/slog"

	audit "ember/pkg/platform/audit"
)

// Worker consumes audit events from the inbox channel and persists them.
// It keeps background processing testable without wiring queue
// implementations into services.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until ctx is cancelled. Append failures are logged
// and skipped; one bad event must not wedge the trail.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "append audit event",
					"action", string(event.Action),
					"error", err,
				)
			}
		}
	}
}
