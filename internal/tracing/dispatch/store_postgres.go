package dispatch

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ember/internal/encounter"
	"ember/pkg/platform/sentinel"
	txcontext "ember/pkg/platform/tx"
)

// PostgresStore persists rows in the exposure_notifications table. The
// idempotency key is the unique index on (recipient_kind, recipient_id,
// source_report_id); concurrent duplicate dispatches race on the constraint,
// not on application state.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) runner(ctx context.Context) dbRunner {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func recipientColumns(p encounter.PartnerRef) (kind, id string) {
	switch p.Kind {
	case encounter.PartnerPlatform:
		return string(encounter.PartnerPlatform), p.UserID
	case encounter.PartnerManual:
		return string(encounter.PartnerManual), p.ContactID
	default:
		return string(encounter.PartnerAnonymous), p.Label
	}
}

func recipientFromColumns(kind, id string) encounter.PartnerRef {
	switch encounter.PartnerKind(kind) {
	case encounter.PartnerPlatform:
		return encounter.PlatformPartner(id)
	case encounter.PartnerManual:
		return encounter.ManualPartner(id)
	default:
		return encounter.AnonymousPartner(id)
	}
}

func (s *PostgresStore) Create(ctx context.Context, n *ExposureNotification) error {
	kind, recipientID := recipientColumns(n.Recipient)
	query := `
		INSERT INTO exposure_notifications
			(id, recipient_kind, recipient_id, sti_types, source_report_id, channel, delivered, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (recipient_kind, recipient_id, source_report_id) DO NOTHING
	`
	res, err := s.runner(ctx).ExecContext(ctx, query,
		n.ID, kind, recipientID, pq.Array(n.STITypes), n.SourceReportID,
		string(n.Channel), n.Delivered, n.ReadAt, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert exposure notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) ListByReport(ctx context.Context, reportID string) ([]*ExposureNotification, error) {
	query := `
		SELECT id, recipient_kind, recipient_id, sti_types, source_report_id, channel, delivered, read_at, created_at
		FROM exposure_notifications
		WHERE source_report_id = $1
	`
	return s.list(ctx, query, reportID)
}

func (s *PostgresStore) ListUnreadApp(ctx context.Context, recipientKey string) ([]*ExposureNotification, error) {
	ref := refFromKey(recipientKey)
	kind, recipientID := recipientColumns(ref)
	query := `
		SELECT id, recipient_kind, recipient_id, sti_types, source_report_id, channel, delivered, read_at, created_at
		FROM exposure_notifications
		WHERE recipient_kind = $1 AND recipient_id = $2 AND channel = $3 AND read_at IS NULL
		ORDER BY created_at DESC
	`
	return s.list(ctx, query, kind, recipientID, string(ChannelApp))
}

func (s *PostgresStore) MarkRead(ctx context.Context, recipientKey string, ids []string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ref := refFromKey(recipientKey)
	kind, recipientID := recipientColumns(ref)
	query := `
		UPDATE exposure_notifications
		SET read_at = $1
		WHERE id = ANY($2)
		  AND recipient_kind = $3 AND recipient_id = $4
		  AND channel = $5 AND read_at IS NULL
	`
	res, err := s.runner(ctx).ExecContext(ctx, query,
		at, pq.Array(ids), kind, recipientID, string(ChannelApp),
	)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (s *PostgresStore) MarkDelivered(ctx context.Context, id string) error {
	res, err := s.runner(ctx).ExecContext(ctx,
		`UPDATE exposure_notifications SET delivered = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification delivered: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*ExposureNotification, error) {
	rows, err := s.runner(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exposure notifications: %w", err)
	}
	defer rows.Close()

	var out []*ExposureNotification
	for rows.Next() {
		var (
			n                 ExposureNotification
			kind, recipientID string
			channel           string
			readAt            sql.NullTime
		)
		err := rows.Scan(&n.ID, &kind, &recipientID, pq.Array(&n.STITypes),
			&n.SourceReportID, &channel, &n.Delivered, &readAt, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan exposure notification: %w", err)
		}
		n.Recipient = recipientFromColumns(kind, recipientID)
		n.Channel = Channel(channel)
		if readAt.Valid {
			stamp := readAt.Time
			n.ReadAt = &stamp
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// refFromKey parses the "kind:id" form produced by PartnerRef.Key. Keys are
// built internally, so a malformed one maps to an anonymous ref that matches
// no rows rather than an error path every caller would have to thread.
func refFromKey(key string) encounter.PartnerRef {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return recipientFromColumns(key[:i], key[i+1:])
		}
	}
	return encounter.AnonymousPartner(key)
}
