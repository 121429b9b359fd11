// Package consent implements the contact-tracing opt-in gate. Opt-in guards
// both sides: only opted-in reporters dispatch notifications and only
// opted-in recipients receive the app channel. Toggling has no retroactive
// effect on existing notification rows.
package consent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dErrors "ember/pkg/domain-errors"
	"ember/pkg/platform/audit"
	"ember/pkg/platform/sentinel"
)

// Settings is the per-user tracing configuration.
type Settings struct {
	UserID  string
	OptedIn bool

	// Screen reminder knobs surface in the settings UI; they do not affect
	// dispatch.
	ScreenReminderDays         int
	ScreenReminderPartnerCount int

	UpdatedAt time.Time
}

// Store persists tracing settings. Implementations return
// sentinel.ErrNotFound when a user has never touched their settings.
type Store interface {
	Get(ctx context.Context, userID string) (*Settings, error)
	Upsert(ctx context.Context, settings *Settings) error
}

// Service answers the process-wide opt-in predicate and handles updates.
type Service struct {
	store  Store
	audit  audit.Recorder
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, recorder audit.Recorder, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{store: store, audit: recorder, logger: logger, now: time.Now}
}

// IsOptedIn reports whether the user consented to contact tracing. A user
// with no settings row has never opted in.
func (s *Service) IsOptedIn(ctx context.Context, userID string) (bool, error) {
	settings, err := s.store.Get(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(dErrors.CodeInternal, "load tracing settings", err)
	}
	return settings.OptedIn, nil
}

// Get returns the user's settings, defaulting to an opted-out zero value.
func (s *Service) Get(ctx context.Context, userID string) (*Settings, error) {
	settings, err := s.store.Get(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return &Settings{UserID: userID}, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load tracing settings", err)
	}
	return settings, nil
}

// Update replaces the user's settings.
func (s *Service) Update(ctx context.Context, settings *Settings) (*Settings, error) {
	if settings.UserID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	previous, err := s.IsOptedIn(ctx, settings.UserID)
	if err != nil {
		return nil, err
	}

	settings.UpdatedAt = s.now()
	if err := s.store.Upsert(ctx, settings); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "persist tracing settings", err)
	}
	s.logger.InfoContext(ctx, "tracing settings updated",
		"user_id", settings.UserID,
		"opted_in", settings.OptedIn,
	)

	if settings.OptedIn != previous {
		action := audit.ActionTracingOptOut
		if settings.OptedIn {
			action = audit.ActionTracingOptIn
		}
		_ = s.audit.Emit(ctx, audit.Event{Action: action, UserID: settings.UserID})
	}
	return settings, nil
}
