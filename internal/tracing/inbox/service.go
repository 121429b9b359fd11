// Package inbox surfaces received anonymous notifications back to their
// recipient. Only the app channel lands here; sms recipients are off
// platform and manual_required rows are the reporter's job.
package inbox

import (
	"context"
	"log/slog"
	"time"

	"ember/internal/encounter"
	"ember/internal/tracing/dispatch"
	dErrors "ember/pkg/domain-errors"
	"ember/pkg/platform/audit"
)

// Store is the notification-table slice the inbox needs.
type Store interface {
	ListUnreadApp(ctx context.Context, recipientKey string) ([]*dispatch.ExposureNotification, error)
	MarkRead(ctx context.Context, recipientKey string, ids []string, at time.Time) (int, error)
}

// ConsentChecker gates the receiving side: a user who toggled opt-in off
// stops seeing their inbox, without the rows being deleted.
type ConsentChecker interface {
	IsOptedIn(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	store   Store
	consent ConsentChecker
	audit   audit.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store Store, consent ConsentChecker, recorder audit.Recorder, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{store: store, consent: consent, audit: recorder, logger: logger, now: time.Now}
}

// ListUnread returns the caller's unread app-channel notifications. The
// recipient key is derived from the authenticated user, so cross-user reads
// are impossible by construction.
func (s *Service) ListUnread(ctx context.Context, userID string) ([]*dispatch.ExposureNotification, error) {
	optedIn, err := s.consent.IsOptedIn(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "check recipient consent", err)
	}
	if !optedIn {
		return []*dispatch.ExposureNotification{}, nil
	}

	rows, err := s.store.ListUnreadApp(ctx, encounter.PlatformPartner(userID).Key())
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list unread notifications", err)
	}
	return rows, nil
}

// MarkRead acknowledges notifications, returning how many actually changed.
// Re-marking an already-read notification is a no-op, and ids belonging to
// other users are silently skipped by the recipient-scoped update.
func (s *Service) MarkRead(ctx context.Context, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	marked, err := s.store.MarkRead(ctx, encounter.PlatformPartner(userID).Key(), ids, s.now())
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "mark notifications read", err)
	}
	if marked > 0 {
		_ = s.audit.Emit(ctx, audit.Event{
			Action: audit.ActionNotificationRead,
			UserID: userID,
		})
	}
	return marked, nil
}
