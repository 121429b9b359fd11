package encounter

import (
	"context"
	"time"
)

// Store persists the encounter ledger and manual contacts. Implementations
// return sentinel.ErrNotFound for missing rows.
type Store interface {
	CreateEncounter(ctx context.Context, e *Encounter) error
	GetEncounter(ctx context.Context, id string) (*Encounter, error)
	DeleteEncounter(ctx context.Context, id string) error

	// ListSince returns the reporter's encounters with met_at at or after
	// since. A zero since means the full ledger.
	ListSince(ctx context.Context, reporterID string, since time.Time) ([]*Encounter, error)

	CreateContact(ctx context.Context, c *ManualContact) error
	GetContact(ctx context.Context, id string) (*ManualContact, error)
	ListContacts(ctx context.Context, ownerID string) ([]*ManualContact, error)

	// DeleteContact removes the contact and downgrades referencing encounter
	// rows to an anonymous label carrying the contact's display name.
	// Encounter rows themselves are never deleted by this call.
	DeleteContact(ctx context.Context, id string) error
}
