//go:build integration

package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ember/internal/encounter"
	"ember/pkg/platform/sentinel"
	"ember/pkg/testutil/containers"
)

// PostgresStoreSuite runs the notification store against a real database so
// the uniqueness constraint, not just the memory emulation, is what gets
// tested.
type PostgresStoreSuite struct {
	suite.Suite

	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T(), "../../../migrations/schema.sql")
	s.store = NewPostgresStore(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "exposure_notifications"))
}

func (s *PostgresStoreSuite) notification(id, userID, reportID string) *ExposureNotification {
	return &ExposureNotification{
		ID:             id,
		Recipient:      encounter.PlatformPartner(userID),
		STITypes:       []string{"chlamydia", "hiv"},
		SourceReportID: reportID,
		Channel:        ChannelApp,
		Delivered:      true,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestUniquenessPerRecipientAndReport() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.notification("n1", "bob", "r1")))

	err := s.store.Create(ctx, s.notification("n2", "bob", "r1"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	s.Require().NoError(s.store.Create(ctx, s.notification("n3", "bob", "r2")))
	s.Require().NoError(s.store.Create(ctx, s.notification("n4", "carol", "r1")))

	rows, err := s.store.ListByReport(ctx, "r1")
	s.Require().NoError(err)
	s.Len(rows, 2)
}

func (s *PostgresStoreSuite) TestConcurrentDuplicatesInsertOnce() {
	ctx := context.Background()

	const writers = 8
	errs := make(chan error, writers)
	for i := range writers {
		go func(i int) {
			errs <- s.store.Create(ctx, s.notification(
				"n-"+string(rune('a'+i)), "bob", "race-report"))
		}(i)
	}

	var conflicts int
	for range writers {
		if err := <-errs; err != nil {
			s.Require().ErrorIs(err, sentinel.ErrConflict)
			conflicts++
		}
	}
	s.Equal(writers-1, conflicts)

	rows, err := s.store.ListByReport(ctx, "race-report")
	s.Require().NoError(err)
	s.Len(rows, 1)
}

func (s *PostgresStoreSuite) TestMarkDelivered() {
	ctx := context.Background()

	n := s.notification("n1", "bob", "r1")
	n.Channel = ChannelSMS
	n.Delivered = false
	s.Require().NoError(s.store.Create(ctx, n))

	s.Require().NoError(s.store.MarkDelivered(ctx, "n1"))

	rows, err := s.store.ListByReport(ctx, "r1")
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.True(rows[0].Delivered)

	s.Require().ErrorIs(s.store.MarkDelivered(ctx, "ghost"), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestMarkReadScopedToRecipient() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.notification("n1", "bob", "r1")))
	s.Require().NoError(s.store.Create(ctx, s.notification("n2", "carol", "r2")))

	marked, err := s.store.MarkRead(ctx, encounter.PlatformPartner("bob").Key(),
		[]string{"n1", "n2"}, time.Now().UTC())
	s.Require().NoError(err)
	s.Equal(1, marked)

	unread, err := s.store.ListUnreadApp(ctx, encounter.PlatformPartner("carol").Key())
	s.Require().NoError(err)
	s.Len(unread, 1)

	marked, err = s.store.MarkRead(ctx, encounter.PlatformPartner("bob").Key(),
		[]string{"n1"}, time.Now().UTC())
	s.Require().NoError(err)
	s.Zero(marked, "re-marking is a no-op")
}
