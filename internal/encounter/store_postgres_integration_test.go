//go:build integration

package encounter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ember/pkg/testutil/containers"
)

type PostgresLedgerSuite struct {
	suite.Suite

	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresLedgerSuite(t *testing.T) {
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T(), "../../migrations/schema.sql")
	s.store = NewPostgresStore(s.pg.DB)
}

func (s *PostgresLedgerSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "encounters", "manual_contacts"))
}

func (s *PostgresLedgerSuite) TestDeleteContactDowngradesEncounters() {
	ctx := context.Background()
	metAt := time.Now().UTC().Truncate(time.Microsecond).Add(-24 * time.Hour)

	s.Require().NoError(s.store.CreateContact(ctx, &ManualContact{
		ID: "c1", OwnerID: "alice", DisplayName: "Sam", PhoneNumber: "+15550002222",
		CreatedAt: time.Now().UTC(),
	}))
	s.Require().NoError(s.store.CreateEncounter(ctx, &Encounter{
		ID: "e1", ReporterID: "alice", Partner: ManualPartner("c1"), MetAt: metAt,
		CreatedAt: time.Now().UTC(),
	}))

	s.Require().NoError(s.store.DeleteContact(ctx, "c1"))

	e, err := s.store.GetEncounter(ctx, "e1")
	s.Require().NoError(err, "ledger rows survive contact deletion")
	s.Equal(PartnerAnonymous, e.Partner.Kind)
	s.Equal("Sam", e.Partner.Label)

	_, err = s.store.GetContact(ctx, "c1")
	s.Require().Error(err)
}

func (s *PostgresLedgerSuite) TestListSinceInclusiveBoundary() {
	ctx := context.Background()
	since := time.Now().UTC().Truncate(time.Microsecond).Add(-48 * time.Hour)

	s.Require().NoError(s.store.CreateEncounter(ctx, &Encounter{
		ID: "at", ReporterID: "alice", Partner: PlatformPartner("bob"), MetAt: since,
		CreatedAt: time.Now().UTC(),
	}))
	s.Require().NoError(s.store.CreateEncounter(ctx, &Encounter{
		ID: "before", ReporterID: "alice", Partner: PlatformPartner("carol"),
		MetAt: since.Add(-time.Microsecond), CreatedAt: time.Now().UTC(),
	}))

	rows, err := s.store.ListSince(ctx, "alice", since)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("at", rows[0].ID)

	rows, err = s.store.ListSince(ctx, "alice", time.Time{})
	s.Require().NoError(err)
	s.Len(rows, 2, "zero since scans the full ledger")
}
