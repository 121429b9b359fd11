package screening

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ember/pkg/platform/sentinel"
	txcontext "ember/pkg/platform/tx"
)

// PostgresStore persists health screens in the health_screens table. The
// result map is stored as JSONB; the derived overall status is a cached
// projection written only from DeriveOverallStatus output.
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

func (s *PostgresStore) Create(ctx context.Context, record *HealthScreenRecord) error {
	results, err := json.Marshal(record.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	query := `
		INSERT INTO health_screens (id, owner_id, test_date, results, overall_status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.runner(ctx).ExecContext(ctx, query,
		record.ID, record.OwnerID, record.TestDate, results,
		string(record.Overall), record.Notes, record.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert health screen: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*HealthScreenRecord, error) {
	query := `
		SELECT id, owner_id, test_date, results, overall_status, notes, created_at
		FROM health_screens WHERE id = $1
	`
	return scanScreen(s.runner(ctx).QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]*HealthScreenRecord, error) {
	query := `
		SELECT id, owner_id, test_date, results, overall_status, notes, created_at
		FROM health_screens WHERE owner_id = $1
		ORDER BY test_date DESC
	`
	rows, err := s.runner(ctx).QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list health screens: %w", err)
	}
	defer rows.Close()

	var out []*HealthScreenRecord
	for rows.Next() {
		record, err := scanScreen(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LatestBefore(ctx context.Context, ownerID string, before time.Time) (*HealthScreenRecord, error) {
	query := `
		SELECT id, owner_id, test_date, results, overall_status, notes, created_at
		FROM health_screens
		WHERE owner_id = $1 AND test_date < $2
		ORDER BY test_date DESC
		LIMIT 1
	`
	return scanScreen(s.runner(ctx).QueryRowContext(ctx, query, ownerID, before))
}

func (s *PostgresStore) Update(ctx context.Context, record *HealthScreenRecord) error {
	results, err := json.Marshal(record.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	query := `
		UPDATE health_screens
		SET results = $2, overall_status = $3, notes = $4
		WHERE id = $1
	`
	res, err := s.runner(ctx).ExecContext(ctx, query,
		record.ID, results, string(record.Overall), record.Notes,
	)
	if err != nil {
		return fmt.Errorf("update health screen: %w", err)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScreen(row rowScanner) (*HealthScreenRecord, error) {
	var (
		record     HealthScreenRecord
		rawResults []byte
		overall    string
	)
	err := row.Scan(&record.ID, &record.OwnerID, &record.TestDate,
		&rawResults, &overall, &record.Notes, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan health screen: %w", err)
	}
	if err := json.Unmarshal(rawResults, &record.Results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	record.Overall = OverallStatus(overall)
	return &record, nil
}
