package screening

import (
	"context"
	"time"
)

// Store persists health screen records. Implementations return
// sentinel.ErrNotFound for missing rows.
type Store interface {
	Create(ctx context.Context, record *HealthScreenRecord) error
	GetByID(ctx context.Context, id string) (*HealthScreenRecord, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*HealthScreenRecord, error)

	// LatestBefore returns the owner's most recent screen with a test date
	// strictly before the given date. Feeds the exposure-window lookback.
	LatestBefore(ctx context.Context, ownerID string, before time.Time) (*HealthScreenRecord, error)

	// Update rewrites results/notes/overall for an existing record. Records
	// are never deleted; edits are the only mutation.
	Update(ctx context.Context, record *HealthScreenRecord) error
}
