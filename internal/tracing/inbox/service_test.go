package inbox

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ember/internal/encounter"
	"ember/internal/tracing/dispatch"
)

type fakeConsent struct {
	optedIn map[string]bool
}

func (f *fakeConsent) IsOptedIn(_ context.Context, userID string) (bool, error) {
	return f.optedIn[userID], nil
}

// InboxSuite tests recipient-scoped reads and idempotent acknowledgements.
type InboxSuite struct {
	suite.Suite

	store   *dispatch.InMemoryStore
	consent *fakeConsent
	svc     *Service
}

func TestInboxSuite(t *testing.T) {
	suite.Run(t, new(InboxSuite))
}

func (s *InboxSuite) SetupTest() {
	s.store = dispatch.NewInMemoryStore()
	s.consent = &fakeConsent{optedIn: map[string]bool{"bob": true, "carol": true}}
	s.svc = NewService(s.store, s.consent, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *InboxSuite) seed(id, recipientUserID, reportID string) {
	s.Require().NoError(s.store.Create(context.Background(), &dispatch.ExposureNotification{
		ID:             id,
		Recipient:      encounter.PlatformPartner(recipientUserID),
		STITypes:       []string{"chlamydia"},
		SourceReportID: reportID,
		Channel:        dispatch.ChannelApp,
		Delivered:      true,
		CreatedAt:      time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func (s *InboxSuite) TestListUnread() {
	s.Run("returns only the caller's rows", func() {
		s.seed("n1", "bob", "r1")
		s.seed("n2", "carol", "r2")

		rows, err := s.svc.ListUnread(context.Background(), "bob")
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal("n1", rows[0].ID)
	})

	s.Run("opted-out recipient sees an empty inbox", func() {
		s.SetupTest()
		s.seed("n1", "bob", "r1")
		s.consent.optedIn["bob"] = false

		rows, err := s.svc.ListUnread(context.Background(), "bob")
		s.Require().NoError(err)
		s.Empty(rows)
	})
}

func (s *InboxSuite) TestMarkRead() {
	s.Run("marking removes from unread and reports the count", func() {
		s.seed("n1", "bob", "r1")
		s.seed("n2", "bob", "r2")

		marked, err := s.svc.MarkRead(context.Background(), "bob", []string{"n1"})
		s.Require().NoError(err)
		s.Equal(1, marked)

		rows, err := s.svc.ListUnread(context.Background(), "bob")
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal("n2", rows[0].ID)
	})

	s.Run("re-marking is a no-op", func() {
		s.SetupTest()
		s.seed("n1", "bob", "r1")

		marked, err := s.svc.MarkRead(context.Background(), "bob", []string{"n1"})
		s.Require().NoError(err)
		s.Equal(1, marked)

		marked, err = s.svc.MarkRead(context.Background(), "bob", []string{"n1"})
		s.Require().NoError(err)
		s.Zero(marked)
	})

	s.Run("other users' ids are silently skipped", func() {
		s.SetupTest()
		s.seed("n1", "bob", "r1")
		s.seed("n2", "carol", "r2")

		marked, err := s.svc.MarkRead(context.Background(), "bob", []string{"n1", "n2"})
		s.Require().NoError(err)
		s.Equal(1, marked)

		rows, err := s.svc.ListUnread(context.Background(), "carol")
		s.Require().NoError(err)
		s.Len(rows, 1, "carol's notification stays unread")
	})

	s.Run("empty id list short-circuits", func() {
		s.SetupTest()
		marked, err := s.svc.MarkRead(context.Background(), "bob", nil)
		s.Require().NoError(err)
		s.Zero(marked)
	})
}
