package dispatch

import (
	"context"
	"time"
)

// Store persists exposure notifications. Create must enforce the
// (recipient, source_report_id) uniqueness at the storage layer and return
// sentinel.ErrConflict when the pair already exists; an application-level
// check-then-insert would leave a race window under concurrent duplicate
// submissions.
type Store interface {
	Create(ctx context.Context, n *ExposureNotification) error
	ListByReport(ctx context.Context, reportID string) ([]*ExposureNotification, error)

	// ListUnreadApp returns app-channel rows with a null read_at for the
	// given recipient key (encounter.PartnerRef.Key form).
	ListUnreadApp(ctx context.Context, recipientKey string) ([]*ExposureNotification, error)

	// MarkRead stamps read_at on the given ids where the row belongs to the
	// recipient, is app-channel, and is still unread. Returns how many rows
	// changed; already-read or foreign ids are skipped, not errors.
	MarkRead(ctx context.Context, recipientKey string, ids []string, at time.Time) (int, error)

	// MarkDelivered flips delivered on an sms row after the gateway ack. The
	// row is created undelivered before the send so that claiming the
	// uniqueness key, not texting, is what settles a duplicate race.
	MarkDelivered(ctx context.Context, id string) error
}
