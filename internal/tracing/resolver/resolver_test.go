package resolver

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ember/internal/encounter"
)

// ResolverSuite tests window scanning, deduplication, and anonymous routing.
type ResolverSuite struct {
	suite.Suite

	store    *encounter.InMemoryStore
	resolver *Resolver
	now      time.Time
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.store = encounter.NewInMemoryStore()
	s.now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.resolver = New(s.store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.resolver.now = func() time.Time { return s.now }
}

func (s *ResolverSuite) log(id string, partner encounter.PartnerRef, metAt time.Time) {
	s.Require().NoError(s.store.CreateEncounter(context.Background(), &encounter.Encounter{
		ID:         id,
		ReporterID: "alice",
		Partner:    partner,
		MetAt:      metAt,
	}))
}

func (s *ResolverSuite) TestResolve() {
	since := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	s.Run("partner met several times resolves once with latest met_at", func() {
		bob := encounter.PlatformPartner("bob")
		s.log("e1", bob, since.AddDate(0, 0, 5))
		s.log("e2", bob, since.AddDate(0, 0, 20))
		s.log("e3", bob, since.AddDate(0, 0, 10))

		res, err := s.resolver.ResolveExposedPartners(context.Background(), "alice", since)
		s.Require().NoError(err)
		s.Require().Len(res.Partners, 1)
		s.Equal(bob, res.Partners[0].Ref)
		s.Equal(since.AddDate(0, 0, 20), res.Partners[0].LastMetAt)
	})

	s.Run("window start is inclusive", func() {
		s.SetupTest()
		s.log("boundary", encounter.PlatformPartner("bob"), since)
		s.log("before", encounter.PlatformPartner("carol"), since.Add(-time.Second))

		res, err := s.resolver.ResolveExposedPartners(context.Background(), "alice", since)
		s.Require().NoError(err)
		s.Require().Len(res.Partners, 1)
		s.Equal("bob", res.Partners[0].Ref.UserID)
	})

	s.Run("zero since scans the full ledger", func() {
		s.SetupTest()
		s.log("ancient", encounter.PlatformPartner("bob"), time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC))

		res, err := s.resolver.ResolveExposedPartners(context.Background(), "alice", time.Time{})
		s.Require().NoError(err)
		s.Len(res.Partners, 1)
	})

	s.Run("future-dated entries are skipped", func() {
		s.SetupTest()
		s.log("future", encounter.PlatformPartner("bob"), s.now.Add(time.Hour))

		res, err := s.resolver.ResolveExposedPartners(context.Background(), "alice", since)
		s.Require().NoError(err)
		s.Empty(res.Partners)
	})

	s.Run("anonymous partners surface as unreachable, deduplicated", func() {
		s.SetupTest()
		s.log("a1", encounter.AnonymousPartner("someone from the party"), since.AddDate(0, 0, 1))
		s.log("a2", encounter.AnonymousPartner("someone from the party"), since.AddDate(0, 0, 2))
		s.log("e1", encounter.PlatformPartner("bob"), since.AddDate(0, 0, 3))

		res, err := s.resolver.ResolveExposedPartners(context.Background(), "alice", since)
		s.Require().NoError(err)
		s.Len(res.Partners, 1)
		s.Equal([]string{"someone from the party"}, res.Unreachable)
	})

	s.Run("manual and platform refs with same raw id stay distinct", func() {
		s.SetupTest()
		s.log("m", encounter.ManualPartner("x-1"), since.AddDate(0, 0, 1))
		s.log("p", encounter.PlatformPartner("x-1"), since.AddDate(0, 0, 1))

		res, err := s.resolver.ResolveExposedPartners(context.Background(), "alice", since)
		s.Require().NoError(err)
		s.Len(res.Partners, 2)
	})
}
