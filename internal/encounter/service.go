package encounter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "ember/pkg/domain-errors"
	"ember/pkg/platform/sentinel"
)

// Service owns ledger writes. Reads during dispatch go straight to the store;
// everything here enforces ownership and write-time validation so invalid
// entries never reach the exposure resolver.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Log appends an encounter to the reporter's ledger.
//
// Errors: CodeInvalidEncounterDate when metAt is in the future,
// CodeInvalidInput on a malformed partner ref or one referencing a contact
// the reporter does not own.
func (s *Service) Log(ctx context.Context, reporterID string, partner PartnerRef, metAt time.Time, location string, activities []string) (*Encounter, error) {
	if err := partner.Validate(); err != nil {
		return nil, err
	}
	if metAt.After(s.now()) {
		return nil, dErrors.New(dErrors.CodeInvalidEncounterDate, "encounter date cannot be in the future")
	}
	if partner.Kind == PartnerManual {
		contact, err := s.store.GetContact(ctx, partner.ContactID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown manual contact")
		}
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "load manual contact", err)
		}
		if contact.OwnerID != reporterID {
			return nil, dErrors.New(dErrors.CodeForbidden, "manual contact belongs to another user")
		}
	}

	e := &Encounter{
		ID:         uuid.NewString(),
		ReporterID: reporterID,
		Partner:    partner,
		MetAt:      metAt,
		Location:   location,
		Activities: activities,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateEncounter(ctx, e); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "persist encounter", err)
	}
	return e, nil
}

// Delete removes an encounter. Owner only.
func (s *Service) Delete(ctx context.Context, reporterID, encounterID string) error {
	e, err := s.store.GetEncounter(ctx, encounterID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "encounter not found")
	}
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "load encounter", err)
	}
	if e.ReporterID != reporterID {
		return dErrors.New(dErrors.CodeForbidden, "encounter belongs to another user")
	}
	if err := s.store.DeleteEncounter(ctx, encounterID); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "delete encounter", err)
	}
	return nil
}

// AddContact registers a manual contact for later encounter logging.
func (s *Service) AddContact(ctx context.Context, ownerID, displayName, phoneNumber, socialHandle string) (*ManualContact, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "display name is required")
	}

	c := &ManualContact{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		DisplayName:  displayName,
		PhoneNumber:  strings.TrimSpace(phoneNumber),
		SocialHandle: strings.TrimSpace(socialHandle),
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateContact(ctx, c); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "persist manual contact", err)
	}
	return c, nil
}

// Contacts lists the owner's manual contacts.
func (s *Service) Contacts(ctx context.Context, ownerID string) ([]*ManualContact, error) {
	contacts, err := s.store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list manual contacts", err)
	}
	return contacts, nil
}

// RemoveContact deletes a manual contact. Historical encounters survive with
// the partner ref downgraded to an anonymous label.
func (s *Service) RemoveContact(ctx context.Context, ownerID, contactID string) error {
	c, err := s.store.GetContact(ctx, contactID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "contact not found")
	}
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "load manual contact", err)
	}
	if c.OwnerID != ownerID {
		return dErrors.New(dErrors.CodeForbidden, "contact belongs to another user")
	}
	if err := s.store.DeleteContact(ctx, contactID); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "delete manual contact", err)
	}
	s.logger.InfoContext(ctx, "manual contact removed", "contact_id", contactID)
	return nil
}
