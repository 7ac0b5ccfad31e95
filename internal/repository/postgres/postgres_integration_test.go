//go:build integration

package postgres

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"advent-raffle-backend/internal/domain/calendar"
	"advent-raffle-backend/internal/testutil"
	"advent-raffle-backend/internal/testutil/containers"
)

type RepositorySuite struct {
	suite.Suite
	ctx context.Context
	pg  *containers.PostgresContainer

	participants *ParticipantRepository
	prizes       *PrizeRepository
	winners      *WinnerRepository
	mints        *MintRepository
	whitelist    *WhitelistRepository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(Migrate(s.ctx, s.pg.DB))
	// Running twice must be harmless.
	s.Require().NoError(Migrate(s.ctx, s.pg.DB))

	s.participants = NewParticipantRepository(s.pg.DB)
	s.prizes = NewPrizeRepository(s.pg.DB)
	s.winners = NewWinnerRepository(s.pg.DB)
	s.mints = NewMintRepository(s.pg.DB)
	s.whitelist = NewWhitelistRepository(s.pg.DB)
}

func (s *RepositorySuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx, "winners", "mints", "prizes", "participants", "whitelist"))
}

func (s *RepositorySuite) seedParticipants(n int) {
	for _, w := range testutil.Wallets(n) {
		s.Require().NoError(s.participants.Create(s.ctx, &calendar.Participant{Wallet: w, Active: true}))
	}
}

func (s *RepositorySuite) TestParticipants() {
	w := testutil.Wallet(1)
	s.Require().NoError(s.participants.Create(s.ctx, &calendar.Participant{Wallet: w, Active: true, RegistrationNFT: "nft-1"}))
	s.ErrorIs(s.participants.Create(s.ctx, &calendar.Participant{Wallet: w}), calendar.ErrConflict)

	got, err := s.participants.Get(s.ctx, w)
	s.Require().NoError(err)
	s.True(got.Active)
	s.Equal("nft-1", got.RegistrationNFT)
	s.False(got.RegisteredAt.IsZero())

	s.Require().NoError(s.participants.SetActive(s.ctx, w, false))
	active, err := s.participants.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Empty(active)

	s.ErrorIs(s.participants.SetActive(s.ctx, testutil.Wallet(2), true), calendar.ErrNotFound)
}

func (s *RepositorySuite) TestPrizeOrderSurvivesUpsert() {
	s.Require().NoError(s.prizes.Save(s.ctx, []calendar.Prize{
		{ID: "B", Door: 3, Quantity: 1, Name: "Mug"},
		{ID: "A", Door: 3, Quantity: 2, Name: "Hoodie"},
	}))
	s.Require().NoError(s.prizes.Save(s.ctx, []calendar.Prize{{ID: "B", Door: 3, Quantity: 4, Name: "Mug XL"}}))

	list, err := s.prizes.ListByDoor(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("B", list[0].ID)
	s.Equal(4, list[0].Quantity)
	s.Equal("A", list[1].ID)

	_, err = s.prizes.Get(s.ctx, "missing")
	s.ErrorIs(err, calendar.ErrNotFound)
}

func (s *RepositorySuite) TestAllocateDoorPersistsBatch() {
	s.seedParticipants(3)
	s.Require().NoError(s.prizes.Save(s.ctx, []calendar.Prize{{ID: "A", Door: 1, Quantity: 2, Name: "Hoodie"}}))

	created, err := s.winners.AllocateDoor(s.ctx, 1, func(snap calendar.DoorSnapshot) ([]calendar.WinnerAssignment, error) {
		s.Len(snap.Participants, 3)
		s.Len(snap.Prizes, 1)
		return []calendar.WinnerAssignment{
			{Wallet: snap.Participants[0].Wallet, PrizeID: "A", DayDate: "2024-12-01"},
			{Wallet: snap.Participants[1].Wallet, PrizeID: "A", DayDate: "2024-12-01"},
		}, nil
	})
	s.Require().NoError(err)
	s.Require().Len(created, 2)
	s.Equal(1, created[0].Door)
	s.Equal("2024-12-01", created[0].DayDate)

	n, err := s.winners.CountByDoor(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(2, n)

	found, err := s.winners.FindByWalletAndDoor(s.ctx, created[1].Wallet, 1)
	s.Require().NoError(err)
	s.Equal("A", found.PrizeID)
	s.False(found.Claimed)
}

func (s *RepositorySuite) TestAllocateDoorUniqueViolationRollsBack() {
	s.seedParticipants(1)
	s.Require().NoError(s.prizes.Save(s.ctx, []calendar.Prize{{ID: "A", Door: 1, Quantity: 2, Name: "Hoodie"}}))
	w := testutil.Wallet(1)

	_, err := s.winners.AllocateDoor(s.ctx, 1, func(calendar.DoorSnapshot) ([]calendar.WinnerAssignment, error) {
		return []calendar.WinnerAssignment{{Wallet: w, PrizeID: "A"}, {Wallet: w, PrizeID: "A"}}, nil
	})
	s.Require().ErrorIs(err, calendar.ErrConflict)

	n, err := s.winners.CountByDoor(s.ctx, 1)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RepositorySuite) TestAllocateDoorSerialisesConcurrentRuns() {
	s.seedParticipants(5)
	s.Require().NoError(s.prizes.Save(s.ctx, []calendar.Prize{{ID: "A", Door: 3, Quantity: 2, Name: "Hoodie"}}))

	var inserted atomic.Int32
	plan := func(snap calendar.DoorSnapshot) ([]calendar.WinnerAssignment, error) {
		if len(snap.Existing) > 0 {
			return nil, nil
		}
		return []calendar.WinnerAssignment{
			{Wallet: snap.Participants[0].Wallet, PrizeID: "A"},
			{Wallet: snap.Participants[1].Wallet, PrizeID: "A"},
		}, nil
	}

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			created, err := s.winners.AllocateDoor(s.ctx, 3, plan)
			inserted.Add(int32(len(created)))
			return err
		})
	}
	s.Require().NoError(g.Wait())
	s.EqualValues(2, inserted.Load())

	n, err := s.winners.CountByDoor(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *RepositorySuite) TestMintsAndWhitelist() {
	w := testutil.Wallet(1)
	rec := &calendar.MintRecord{ID: "3f1c6d3e-0000-4000-8000-000000000001", Wallet: w, Door: 2, NFTReference: "nft", IsEligibleForRaffle: true, MintedAt: testutil.Day(2)}
	s.Require().NoError(s.mints.Create(s.ctx, rec))
	dup := *rec
	dup.ID = "3f1c6d3e-0000-4000-8000-000000000002"
	s.ErrorIs(s.mints.Create(s.ctx, &dup), calendar.ErrConflict)

	got, err := s.mints.Get(s.ctx, w, 2)
	s.Require().NoError(err)
	s.Equal(rec.ID, got.ID)

	list, err := s.mints.ListByWallet(s.ctx, w)
	s.Require().NoError(err)
	s.Len(list, 1)

	n, err := s.whitelist.Add(s.ctx, w, w, testutil.Wallet(2))
	s.Require().NoError(err)
	s.Equal(2, n)
	ok, err := s.whitelist.Contains(s.ctx, w)
	s.Require().NoError(err)
	s.True(ok)
}
