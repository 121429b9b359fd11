package encounter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ember/pkg/platform/sentinel"
	txcontext "ember/pkg/platform/tx"
)

// PostgresStore persists the ledger in the encounters and manual_contacts
// tables. The partner union maps to (partner_kind, partner_id) columns where
// partner_id holds the user id, contact id, or anonymous label per kind.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) runner(ctx context.Context) dbRunner {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func partnerColumns(p PartnerRef) (kind, id string) {
	switch p.Kind {
	case PartnerPlatform:
		return string(PartnerPlatform), p.UserID
	case PartnerManual:
		return string(PartnerManual), p.ContactID
	default:
		return string(PartnerAnonymous), p.Label
	}
}

func partnerFromColumns(kind, id string) PartnerRef {
	switch PartnerKind(kind) {
	case PartnerPlatform:
		return PlatformPartner(id)
	case PartnerManual:
		return ManualPartner(id)
	default:
		return AnonymousPartner(id)
	}
}

func (s *PostgresStore) CreateEncounter(ctx context.Context, e *Encounter) error {
	kind, partnerID := partnerColumns(e.Partner)
	query := `
		INSERT INTO encounters (id, reporter_id, partner_kind, partner_id, met_at, location, activities, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.runner(ctx).ExecContext(ctx, query,
		e.ID, e.ReporterID, kind, partnerID, e.MetAt,
		e.Location, pq.Array(e.Activities), e.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert encounter: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEncounter(ctx context.Context, id string) (*Encounter, error) {
	query := `
		SELECT id, reporter_id, partner_kind, partner_id, met_at, location, activities, created_at
		FROM encounters WHERE id = $1
	`
	return scanEncounter(s.runner(ctx).QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) DeleteEncounter(ctx context.Context, id string) error {
	res, err := s.runner(ctx).ExecContext(ctx, `DELETE FROM encounters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete encounter: %w", err)
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

func (s *PostgresStore) ListSince(ctx context.Context, reporterID string, since time.Time) ([]*Encounter, error) {
	query := `
		SELECT id, reporter_id, partner_kind, partner_id, met_at, location, activities, created_at
		FROM encounters
		WHERE reporter_id = $1 AND met_at >= $2
	`
	rows, err := s.runner(ctx).QueryContext(ctx, query, reporterID, since)
	if err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	defer rows.Close()

	var out []*Encounter
	for rows.Next() {
		e, err := scanEncounter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateContact(ctx context.Context, c *ManualContact) error {
	query := `
		INSERT INTO manual_contacts (id, owner_id, display_name, phone_number, social_handle, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.runner(ctx).ExecContext(ctx, query,
		c.ID, c.OwnerID, c.DisplayName, c.PhoneNumber, c.SocialHandle, c.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert manual contact: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetContact(ctx context.Context, id string) (*ManualContact, error) {
	query := `
		SELECT id, owner_id, display_name, phone_number, social_handle, created_at
		FROM manual_contacts WHERE id = $1
	`
	var c ManualContact
	err := s.runner(ctx).QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.OwnerID, &c.DisplayName, &c.PhoneNumber, &c.SocialHandle, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan manual contact: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) ListContacts(ctx context.Context, ownerID string) ([]*ManualContact, error) {
	query := `
		SELECT id, owner_id, display_name, phone_number, social_handle, created_at
		FROM manual_contacts WHERE owner_id = $1
		ORDER BY display_name
	`
	rows, err := s.runner(ctx).QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list manual contacts: %w", err)
	}
	defer rows.Close()

	var out []*ManualContact
	for rows.Next() {
		var c ManualContact
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.DisplayName, &c.PhoneNumber, &c.SocialHandle, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan manual contact: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// DeleteContact downgrades referencing encounters to an anonymous label
// before removing the contact row, inside one transaction unless the caller
// already runs in one.
func (s *PostgresStore) DeleteContact(ctx context.Context, id string) error {
	run := func(ctx context.Context) error {
		downgrade := `
			UPDATE encounters e
			SET partner_kind = $1, partner_id = c.display_name
			FROM manual_contacts c
			WHERE c.id = $2 AND e.partner_kind = $3 AND e.partner_id = $2
		`
		if _, err := s.runner(ctx).ExecContext(ctx, downgrade,
			string(PartnerAnonymous), id, string(PartnerManual)); err != nil {
			return fmt.Errorf("downgrade encounters: %w", err)
		}

		res, err := s.runner(ctx).ExecContext(ctx, `DELETE FROM manual_contacts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete manual contact: %w", err)
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

	if _, ok := txcontext.From(ctx); ok {
		return run(ctx)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := run(txcontext.WithTx(ctx, dbTx)); err != nil {
		_ = dbTx.Rollback()
		return err
	}
	return dbTx.Commit()
}

func scanEncounter(row interface{ Scan(dest ...any) error }) (*Encounter, error) {
	var (
		e        Encounter
		kind, id string
	)
	err := row.Scan(&e.ID, &e.ReporterID, &kind, &id, &e.MetAt,
		&e.Location, pq.Array(&e.Activities), &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan encounter: %w", err)
	}
	e.Partner = partnerFromColumns(kind, id)
	return &e, nil
}
