package screening

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ember/internal/platform/metrics"
	"ember/internal/tracing/dispatch"
	dErrors "ember/pkg/domain-errors"
	"ember/pkg/platform/audit"
	"ember/pkg/platform/sentinel"
)

// ConsentChecker gates whether a positive screen triggers dispatch at all.
type ConsentChecker interface {
	IsOptedIn(ctx context.Context, userID string) (bool, error)
}

// Dispatcher fans exposure warnings out to partners (see tracing/dispatch).
type Dispatcher interface {
	Dispatch(ctx context.Context, reporterID string, stiTypes []string, reportID string, since time.Time) (*dispatch.DispatchResult, error)
}

// Config holds screening policy knobs.
type Config struct {
	// LookbackDays bounds the exposure window for reporters with no prior
	// screen on record. Zero means the full ledger. This is an explicit
	// policy choice, not a guessed default.
	LookbackDays int
}

// SubmitOutcome is what the submission flow hands back to the client: the
// persisted record, plus the dispatch summary when one ran.
type SubmitOutcome struct {
	Record   *HealthScreenRecord
	Dispatch *dispatch.DispatchResult
}

// Service owns the health-screen lifecycle and the submit orchestration:
// derive, persist, and trigger dispatch for opted-in reporters with a
// positive result.
type Service struct {
	store      Store
	consent    ConsentChecker
	dispatcher Dispatcher
	metrics    *metrics.Metrics
	audit      audit.Recorder
	logger     *slog.Logger
	cfg        Config
	now        func() time.Time
}

func NewService(store Store, consent ConsentChecker, dispatcher Dispatcher, m *metrics.Metrics, recorder audit.Recorder, logger *slog.Logger, cfg Config) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{
		store:      store,
		consent:    consent,
		dispatcher: dispatcher,
		metrics:    m,
		audit:      recorder,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Submit validates and persists a screen, then dispatches exposure warnings
// when the reporter is opted in and at least one type is positive.
//
// The record always persists, even when every downstream notification
// fails: a dispatch error is logged and the outcome carries a nil Dispatch
// rather than failing the submission.
//
// Errors: CodeIncompleteResults/CodeInvalidInput from derivation;
// CodeInternal when persistence itself fails.
func (s *Service) Submit(ctx context.Context, reporterID string, testDate time.Time, results map[STIType]Result, notes string) (*SubmitOutcome, error) {
	overall, err := DeriveOverallStatus(results)
	if err != nil {
		return nil, err
	}

	record := &HealthScreenRecord{
		ID:        uuid.NewString(),
		OwnerID:   reporterID,
		TestDate:  testDate,
		Results:   results,
		Overall:   overall,
		Notes:     notes,
		CreatedAt: s.now(),
	}
	if err := s.store.Create(ctx, record); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "persist health screen", err)
	}
	s.metrics.IncScreenSubmitted()
	_ = s.audit.Emit(ctx, audit.Event{
		Action:   audit.ActionScreenSubmitted,
		UserID:   reporterID,
		ReportID: record.ID,
	})

	outcome := &SubmitOutcome{Record: record}

	positives := record.PositiveTypes()
	if len(positives) == 0 {
		return outcome, nil
	}
	optedIn, err := s.consent.IsOptedIn(ctx, reporterID)
	if err != nil {
		s.logger.ErrorContext(ctx, "consent check failed after screen persisted, skipping dispatch",
			"report_id", record.ID,
			"error", err,
		)
		return outcome, nil
	}
	if !optedIn {
		return outcome, nil
	}

	since := s.exposureWindowStart(ctx, reporterID, testDate)
	stiTypes := make([]string, len(positives))
	for i, typ := range positives {
		stiTypes[i] = string(typ)
	}

	result, err := s.dispatcher.Dispatch(ctx, reporterID, stiTypes, record.ID, since)
	if err != nil {
		// The screen is already durable; notification delivery is not worth
		// failing the submission over.
		s.logger.ErrorContext(ctx, "exposure dispatch failed",
			"report_id", record.ID,
			"error", err,
		)
		return outcome, nil
	}
	outcome.Dispatch = result
	return outcome, nil
}

// exposureWindowStart picks the window open: the reporter's previous screen
// date when one exists, otherwise the configured lookback (zero lookback
// means all encounters ever logged).
func (s *Service) exposureWindowStart(ctx context.Context, reporterID string, testDate time.Time) time.Time {
	prior, err := s.store.LatestBefore(ctx, reporterID, testDate)
	if err == nil {
		return prior.TestDate
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "prior screen lookup failed, using configured lookback",
			"error", err,
		)
	}
	if s.cfg.LookbackDays <= 0 {
		return time.Time{}
	}
	return s.now().AddDate(0, 0, -s.cfg.LookbackDays)
}

// Edit rewrites results and notes on an existing record, recomputing the
// derived status through the single derivation path. Owner only; edits do
// not re-trigger dispatch.
func (s *Service) Edit(ctx context.Context, ownerID, recordID string, results map[STIType]Result, notes string) (*HealthScreenRecord, error) {
	overall, err := DeriveOverallStatus(results)
	if err != nil {
		return nil, err
	}

	record, err := s.store.GetByID(ctx, recordID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "health screen not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load health screen", err)
	}
	if record.OwnerID != ownerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "health screen belongs to another user")
	}

	record.Results = results
	record.Overall = overall
	record.Notes = notes
	if err := s.store.Update(ctx, record); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "update health screen", err)
	}
	_ = s.audit.Emit(ctx, audit.Event{
		Action:   audit.ActionScreenEdited,
		UserID:   ownerID,
		ReportID: record.ID,
	})
	return record, nil
}

// History lists the owner's screens, newest first where the store orders.
func (s *Service) History(ctx context.Context, ownerID string) ([]*HealthScreenRecord, error) {
	records, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list health screens", err)
	}
	return records, nil
}
