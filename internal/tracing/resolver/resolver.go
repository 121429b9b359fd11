// Package resolver computes the exposed partner set for a positive report:
// the distinct partners the reporter logged encounters with inside the
// exposure window.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"ember/internal/encounter"
	dErrors "ember/pkg/domain-errors"
)

// EncounterReader is the slice of the ledger store the resolver needs.
type EncounterReader interface {
	ListSince(ctx context.Context, reporterID string, since time.Time) ([]*encounter.Encounter, error)
}

// ExposedPartner is one distinct partner in the window. LastMetAt is the most
// recent in-window encounter, kept as a hint for the contact-personally list.
type ExposedPartner struct {
	Ref       encounter.PartnerRef
	LastMetAt time.Time
}

// Resolution is the outcome of a window scan. Partners are deduplicated with
// no ordering guarantee; callers treat the slice as a set. Unreachable holds
// the labels of anonymous-only entries inside the window, surfaced so the
// reporter knows who cannot be notified at all.
type Resolution struct {
	Partners    []ExposedPartner
	Unreachable []string
}

// Resolver scans the encounter ledger. It never mutates it.
type Resolver struct {
	encounters EncounterReader
	logger     *slog.Logger
	now        func() time.Time
}

func New(encounters EncounterReader, logger *slog.Logger) *Resolver {
	return &Resolver{encounters: encounters, logger: logger, now: time.Now}
}

// ResolveExposedPartners collects the distinct partners met at or after
// since. A zero since means the full ledger. Entries dated in the future are
// skipped; the ledger rejects them at write time, so one here means the row
// predates that check.
func (r *Resolver) ResolveExposedPartners(ctx context.Context, reporterID string, since time.Time) (*Resolution, error) {
	encounters, err := r.encounters.ListSince(ctx, reporterID, since)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "scan encounter ledger", err)
	}

	now := r.now()
	index := make(map[string]int, len(encounters))
	anonSeen := make(map[string]struct{})
	res := &Resolution{}

	for _, e := range encounters {
		if e.MetAt.After(now) {
			r.logger.WarnContext(ctx, "skipping future-dated encounter",
				"encounter_id", e.ID,
			)
			continue
		}
		key := e.Partner.Key()
		if key == "" {
			continue
		}

		if e.Partner.Kind == encounter.PartnerAnonymous {
			if _, dup := anonSeen[key]; !dup {
				anonSeen[key] = struct{}{}
				res.Unreachable = append(res.Unreachable, e.Partner.Label)
			}
			continue
		}

		if i, dup := index[key]; dup {
			if e.MetAt.After(res.Partners[i].LastMetAt) {
				res.Partners[i].LastMetAt = e.MetAt
			}
			continue
		}
		index[key] = len(res.Partners)
		res.Partners = append(res.Partners, ExposedPartner{Ref: e.Partner, LastMetAt: e.MetAt})
	}
	return res, nil
}
