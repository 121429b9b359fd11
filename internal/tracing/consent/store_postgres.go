package consent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ember/pkg/platform/sentinel"
	txcontext "ember/pkg/platform/tx"
)

// PostgresStore persists settings in the tracing_settings table, one row per
// user, written via upsert.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) runner(ctx context.Context) dbRunner {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*Settings, error) {
	query := `
		SELECT user_id, opted_in, screen_reminder_days, screen_reminder_partner_count, updated_at
		FROM tracing_settings WHERE user_id = $1
	`
	var settings Settings
	err := s.runner(ctx).QueryRowContext(ctx, query, userID).Scan(
		&settings.UserID, &settings.OptedIn,
		&settings.ScreenReminderDays, &settings.ScreenReminderPartnerCount,
		&settings.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tracing settings: %w", err)
	}
	return &settings, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, settings *Settings) error {
	query := `
		INSERT INTO tracing_settings (user_id, opted_in, screen_reminder_days, screen_reminder_partner_count, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			opted_in = EXCLUDED.opted_in,
			screen_reminder_days = EXCLUDED.screen_reminder_days,
			screen_reminder_partner_count = EXCLUDED.screen_reminder_partner_count,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.runner(ctx).ExecContext(ctx, query,
		settings.UserID, settings.OptedIn,
		settings.ScreenReminderDays, settings.ScreenReminderPartnerCount,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert tracing settings: %w", err)
	}
	return nil
}
