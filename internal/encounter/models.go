package encounter

import (
	"fmt"
	"time"

	dErrors "ember/pkg/domain-errors"
)

// PartnerKind discriminates the partner reference union.
type PartnerKind string

const (
	// PartnerPlatform references another account on the platform.
	PartnerPlatform PartnerKind = "platform"
	// PartnerManual references a manually logged contact owned by the reporter.
	PartnerManual PartnerKind = "manual"
	// PartnerAnonymous is a free-text label with no linkable identity.
	PartnerAnonymous PartnerKind = "anonymous"
)

// PartnerRef is a tagged union: exactly one of UserID, ContactID, or Label is
// set, selected by Kind. Construct via the Partner helpers so the invariant
// holds; the dispatcher switches exhaustively on Kind.
type PartnerRef struct {
	Kind      PartnerKind `json:"kind"`
	UserID    string      `json:"user_id,omitempty"`
	ContactID string      `json:"contact_id,omitempty"`
	Label     string      `json:"label,omitempty"`
}

// PlatformPartner references a platform account.
func PlatformPartner(userID string) PartnerRef {
	return PartnerRef{Kind: PartnerPlatform, UserID: userID}
}

// ManualPartner references a manually logged contact.
func ManualPartner(contactID string) PartnerRef {
	return PartnerRef{Kind: PartnerManual, ContactID: contactID}
}

// AnonymousPartner carries only a display label.
func AnonymousPartner(label string) PartnerRef {
	return PartnerRef{Kind: PartnerAnonymous, Label: label}
}

// Key returns a stable identity string, used for deduplication and as the
// recipient reference on notification rows.
func (p PartnerRef) Key() string {
	switch p.Kind {
	case PartnerPlatform:
		return "platform:" + p.UserID
	case PartnerManual:
		return "manual:" + p.ContactID
	case PartnerAnonymous:
		return "anonymous:" + p.Label
	default:
		return ""
	}
}

// Validate enforces the exactly-one-variant invariant.
func (p PartnerRef) Validate() error {
	switch p.Kind {
	case PartnerPlatform:
		if p.UserID == "" || p.ContactID != "" || p.Label != "" {
			return dErrors.New(dErrors.CodeInvalidInput, "platform partner requires user_id only")
		}
	case PartnerManual:
		if p.ContactID == "" || p.UserID != "" || p.Label != "" {
			return dErrors.New(dErrors.CodeInvalidInput, "manual partner requires contact_id only")
		}
	case PartnerAnonymous:
		if p.Label == "" || p.UserID != "" || p.ContactID != "" {
			return dErrors.New(dErrors.CodeInvalidInput, "anonymous partner requires label only")
		}
	default:
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown partner kind %q", p.Kind))
	}
	return nil
}

// Encounter is one ledger entry, owned by and visible to the reporter only.
type Encounter struct {
	ID         string
	ReporterID string
	Partner    PartnerRef
	MetAt      time.Time
	Location   string
	Activities []string
	CreatedAt  time.Time
}

// ManualContact is an off-platform person the owner logged by hand.
type ManualContact struct {
	ID           string
	OwnerID      string
	DisplayName  string
	PhoneNumber  string
	SocialHandle string
	CreatedAt    time.Time
}
