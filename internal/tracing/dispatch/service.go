// Package dispatch decides, for each exposed partner, which delivery channel
// applies, sends through it, and records the anonymized notification row.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"ember/internal/encounter"
	"ember/internal/platform/metrics"
	"ember/internal/tracing/resolver"
	dErrors "ember/pkg/domain-errors"
	"ember/pkg/platform/audit"
	"ember/pkg/platform/sentinel"
)

var tracer = otel.Tracer("ember/internal/tracing/dispatch")

// ConsentChecker gates both sides of a dispatch: the reporter must have
// opted in to send, a platform recipient must have opted in to receive.
type ConsentChecker interface {
	IsOptedIn(ctx context.Context, userID string) (bool, error)
}

// PartnerResolver computes the exposed partner set (see tracing/resolver).
type PartnerResolver interface {
	ResolveExposedPartners(ctx context.Context, reporterID string, since time.Time) (*resolver.Resolution, error)
}

// ContactReader loads manual contacts for channel selection (phone on file?)
// and follow-up hints.
type ContactReader interface {
	GetContact(ctx context.Context, id string) (*encounter.ManualContact, error)
}

// AppNotifier pushes an opaque payload to a platform member's client. The
// notification row is the durable in-app copy; the push is a nudge.
type AppNotifier interface {
	Send(ctx context.Context, recipientUserID string, payload []byte) error
}

// SMSGateway is the external text channel. Send must respect ctx deadlines.
type SMSGateway interface {
	Send(ctx context.Context, phoneNumber, text string) error
}

// Config bounds the fan-out.
type Config struct {
	// Concurrency caps in-flight per-partner sends.
	Concurrency int
	// SMSTimeout bounds a single gateway call so one slow send cannot pin
	// the whole dispatch.
	SMSTimeout time.Duration
}

// Service orchestrates a dispatch run. It reads the ledger and screens
// read-only; the notification table is the only shared resource it writes,
// always under the (recipient, report) uniqueness guarantee.
type Service struct {
	resolver    PartnerResolver
	consent     ConsentChecker
	contacts    ContactReader
	store       Store
	app         AppNotifier
	sms         SMSGateway
	metrics     *metrics.Metrics
	audit       audit.Recorder
	logger      *slog.Logger
	concurrency int
	smsTimeout  time.Duration
	now         func() time.Time
}

func NewService(
	partners PartnerResolver,
	consent ConsentChecker,
	contacts ContactReader,
	store Store,
	app AppNotifier,
	sms SMSGateway,
	m *metrics.Metrics,
	recorder audit.Recorder,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.SMSTimeout <= 0 {
		cfg.SMSTimeout = 5 * time.Second
	}
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{
		resolver:    partners,
		consent:     consent,
		contacts:    contacts,
		store:       store,
		app:         app,
		sms:         sms,
		metrics:     m,
		audit:       recorder,
		logger:      logger,
		concurrency: cfg.Concurrency,
		smsTimeout:  cfg.SMSTimeout,
		now:         time.Now,
	}
}

// Dispatch warns every reachable partner in the exposure window exactly once
// for the given report.
//
// The triggering flow already refuses to call this for a reporter without
// consent; the re-check here fails fast if it is reached some other way.
//
// Errors: CodeNotOptedIn when the reporter lacks consent; CodeInternal on
// resolver/store failures. Per-partner delivery failures never surface as
// errors - those partners come back in the result's ManualRequired list.
func (s *Service) Dispatch(ctx context.Context, reporterID string, stiTypes []string, reportID string, since time.Time) (*DispatchResult, error) {
	ctx, span := tracer.Start(ctx, "dispatch.Dispatch")
	defer span.End()

	optedIn, err := s.consent.IsOptedIn(ctx, reporterID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "check reporter consent", err)
	}
	if !optedIn {
		return nil, dErrors.New(dErrors.CodeNotOptedIn, "reporter has not opted into contact tracing")
	}

	existing, err := s.store.ListByReport(ctx, reportID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "check for prior dispatch", err)
	}
	if len(existing) > 0 {
		s.logger.InfoContext(ctx, "dispatch already processed for report, returning prior result",
			"report_id", reportID,
		)
		return s.resultFromRows(ctx, existing), nil
	}

	resolution, err := s.resolver.ResolveExposedPartners(ctx, reporterID, since)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("partners", len(resolution.Partners)))

	start := s.now()
	acc := &accumulator{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, partner := range resolution.Partners {
		g.Go(func() error {
			s.notifyPartner(gctx, partner, stiTypes, reportID, acc)
			return nil
		})
	}
	// Per-partner failures are contained in the accumulator; counts are
	// final only after every send has completed or definitively failed.
	_ = g.Wait()
	s.metrics.ObserveDispatch(time.Since(start))

	if acc.conflicted() {
		// Lost a concurrent duplicate race for at least one partner. The
		// first writer's rows are the result of record.
		rows, err := s.store.ListByReport(ctx, reportID)
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "reload dispatched rows", err)
		}
		return s.resultFromRows(ctx, rows), nil
	}

	result := acc.result()
	result.Unreachable = append(result.Unreachable, resolution.Unreachable...)

	_ = s.audit.Emit(ctx, audit.Event{
		Action:         audit.ActionDispatchCompleted,
		UserID:         reporterID,
		ReportID:       reportID,
		AppNotified:    result.AppNotified,
		SMSSent:        result.SMSSent,
		ManualRequired: len(result.ManualRequired),
	})
	return result, nil
}

func (s *Service) notifyPartner(ctx context.Context, partner resolver.ExposedPartner, stiTypes []string, reportID string, acc *accumulator) {
	switch partner.Ref.Kind {
	case encounter.PartnerPlatform:
		s.notifyPlatformUser(ctx, partner, stiTypes, reportID, acc)
	case encounter.PartnerManual:
		s.notifyManualContact(ctx, partner, stiTypes, reportID, acc)
	case encounter.PartnerAnonymous:
		// The resolver routes these to Unreachable; nothing can be
		// delivered without a linkable identity.
	}
}

func (s *Service) notifyPlatformUser(ctx context.Context, partner resolver.ExposedPartner, stiTypes []string, reportID string, acc *accumulator) {
	userID := partner.Ref.UserID
	optedIn, err := s.consent.IsOptedIn(ctx, userID)
	if err != nil {
		// Without proof of consent the partner must not be contacted.
		s.logger.WarnContext(ctx, "recipient consent lookup failed, skipping partner",
			"report_id", reportID,
			"error", err,
		)
		return
	}
	if !optedIn {
		// Skipped entirely: no record, no count. Their consent to receive
		// was never given.
		return
	}

	n := &ExposureNotification{
		ID:             uuid.NewString(),
		Recipient:      partner.Ref,
		STITypes:       slices.Clone(stiTypes),
		SourceReportID: reportID,
		Channel:        ChannelApp,
		Delivered:      true,
		CreatedAt:      s.now(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			acc.markConflict()
			return
		}
		s.logger.ErrorContext(ctx, "persist app notification failed, downgrading to manual follow-up",
			"report_id", reportID,
			"error", err,
		)
		acc.addFollowUp(FollowUp{LastMetAt: partner.LastMetAt})
		return
	}
	acc.incApp()
	s.metrics.IncNotification(string(ChannelApp))

	payload, err := BuildAppPayload(stiTypes)
	if err == nil {
		err = s.app.Send(ctx, userID, payload)
	}
	if err != nil {
		// The row above is the durable inbox entry, so the recipient still
		// sees the warning in-app; only the real-time nudge was lost.
		s.logger.WarnContext(ctx, "app push failed, inbox row remains",
			"report_id", reportID,
			"error", err,
		)
	}
}

func (s *Service) notifyManualContact(ctx context.Context, partner resolver.ExposedPartner, stiTypes []string, reportID string, acc *accumulator) {
	contact, err := s.contacts.GetContact(ctx, partner.Ref.ContactID)
	if err != nil {
		// Deleted between encounter logging and dispatch; the ledger row is
		// on its way to an anonymous downgrade.
		s.logger.WarnContext(ctx, "manual contact missing during dispatch",
			"report_id", reportID,
			"error", err,
		)
		acc.addUnreachable("a removed contact")
		return
	}

	if contact.PhoneNumber == "" {
		s.recordManualRequired(ctx, partner, contact, stiTypes, reportID, acc)
		return
	}

	// The undelivered row is inserted before the gateway call: the uniqueness
	// key is the arbiter of a concurrent duplicate dispatch, so the loser must
	// observe the conflict before it ever texts the contact.
	n := &ExposureNotification{
		ID:             uuid.NewString(),
		Recipient:      partner.Ref,
		STITypes:       slices.Clone(stiTypes),
		SourceReportID: reportID,
		Channel:        ChannelSMS,
		Delivered:      false,
		CreatedAt:      s.now(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			acc.markConflict()
			return
		}
		s.logger.ErrorContext(ctx, "persist sms notification failed",
			"report_id", reportID,
			"error", err,
		)
		acc.addFollowUp(followUpFor(contact, partner.LastMetAt))
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.smsTimeout)
	defer cancel()
	sendErr := s.sms.Send(sendCtx, contact.PhoneNumber, SMSText(stiTypes))

	if sendErr != nil {
		// Failed sends are never dropped silently: the row keeps
		// delivered=false and the reporter is asked to reach out.
		s.metrics.IncSMSFailure()
		s.logger.WarnContext(ctx, "sms send failed, folding contact into manual follow-up",
			"report_id", reportID,
			"error", sendErr,
		)
		acc.addFollowUp(followUpFor(contact, partner.LastMetAt))
		return
	}

	if err := s.store.MarkDelivered(ctx, n.ID); err != nil {
		// The text went out; a missed delivered flag only understates the row.
		s.logger.ErrorContext(ctx, "mark sms notification delivered failed",
			"report_id", reportID,
			"error", err,
		)
	}
	acc.incSMS()
	s.metrics.IncNotification(string(ChannelSMS))
}

func (s *Service) recordManualRequired(ctx context.Context, partner resolver.ExposedPartner, contact *encounter.ManualContact, stiTypes []string, reportID string, acc *accumulator) {
	n := &ExposureNotification{
		ID:             uuid.NewString(),
		Recipient:      partner.Ref,
		STITypes:       slices.Clone(stiTypes),
		SourceReportID: reportID,
		Channel:        ChannelManualRequired,
		Delivered:      false,
		CreatedAt:      s.now(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			acc.markConflict()
			return
		}
		s.logger.ErrorContext(ctx, "persist manual-required notification failed",
			"report_id", reportID,
			"error", err,
		)
	}
	s.metrics.IncNotification(string(ChannelManualRequired))
	acc.addFollowUp(followUpFor(contact, partner.LastMetAt))
}

// resultFromRows rebuilds a DispatchResult from persisted rows, used for
// idempotent replays and for the loser of a concurrent duplicate race.
// Anonymous-label transparency info and encounter times are not persisted, so
// replays carry an empty Unreachable list and FollowUps without LastMetAt.
func (s *Service) resultFromRows(ctx context.Context, rows []*ExposureNotification) *DispatchResult {
	result := &DispatchResult{ManualRequired: []FollowUp{}}
	for _, n := range rows {
		switch {
		case n.Channel == ChannelApp:
			result.AppNotified++
		case n.Channel == ChannelSMS && n.Delivered:
			result.SMSSent++
		default:
			fu := FollowUp{}
			if n.Recipient.Kind == encounter.PartnerManual {
				if contact, err := s.contacts.GetContact(ctx, n.Recipient.ContactID); err == nil {
					fu.Name = contact.DisplayName
					fu.Phone = contact.PhoneNumber
				}
			}
			result.ManualRequired = append(result.ManualRequired, fu)
		}
	}
	return result
}

func followUpFor(contact *encounter.ManualContact, lastMetAt time.Time) FollowUp {
	return FollowUp{
		Name:      contact.DisplayName,
		Phone:     contact.PhoneNumber,
		LastMetAt: lastMetAt,
	}
}

type accumulator struct {
	mu          sync.Mutex
	app         int
	sms         int
	followUps   []FollowUp
	unreachable []string
	conflicts   int
}

func (a *accumulator) incApp() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.app++
}

func (a *accumulator) incSMS() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sms++
}

func (a *accumulator) addFollowUp(fu FollowUp) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.followUps = append(a.followUps, fu)
}

func (a *accumulator) addUnreachable(label string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unreachable = append(a.unreachable, label)
}

func (a *accumulator) markConflict() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conflicts++
}

func (a *accumulator) conflicted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conflicts > 0
}

func (a *accumulator) result() *DispatchResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	followUps := make([]FollowUp, len(a.followUps))
	copy(followUps, a.followUps)
	return &DispatchResult{
		AppNotified:    a.app,
		SMSSent:        a.sms,
		ManualRequired: followUps,
		Unreachable:    slices.Clone(a.unreachable),
	}
}
