package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"caseworks/internal/stay/models"
	"caseworks/internal/stay/service"
	id "caseworks/pkg/domain"
	"caseworks/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newStay(beneficiaryID id.BeneficiaryID, dormitory, bed string, status models.Status) *models.Stay {
	stay, err := models.NewStay(id.StayID(uuid.New()), beneficiaryID, dormitory, bed, s.now, nil, status, id.UserID(uuid.New()), s.now)
	s.Require().NoError(err)
	return stay
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	stay := s.newStay(id.BeneficiaryID(uuid.New()), "A", "12", models.StatusActive)
	s.Require().NoError(s.store.Create(s.ctx, stay))

	found, err := s.store.FindByID(s.ctx, stay.ID)
	s.Require().NoError(err)
	s.Equal(stay.ID, found.ID)
	s.Equal("12", found.Bed)
}

func (s *InMemoryStoreSuite) TestFindMissingReturnsNotFound() {
	_, err := s.store.FindByID(s.ctx, id.StayID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestRejectsSecondActiveStayForBeneficiary() {
	beneficiaryID := id.BeneficiaryID(uuid.New())
	s.Require().NoError(s.store.Create(s.ctx, s.newStay(beneficiaryID, "A", "12", models.StatusActive)))

	err := s.store.Create(s.ctx, s.newStay(beneficiaryID, "B", "3", models.StatusActive))
	s.ErrorIs(err, service.ErrBeneficiaryHasActiveStay)
}

func (s *InMemoryStoreSuite) TestRejectsSecondActiveStayForBed() {
	s.Require().NoError(s.store.Create(s.ctx, s.newStay(id.BeneficiaryID(uuid.New()), "A", "12", models.StatusActive)))

	err := s.store.Create(s.ctx, s.newStay(id.BeneficiaryID(uuid.New()), "A", "12", models.StatusActive))
	s.ErrorIs(err, service.ErrBedOccupied)
}

func (s *InMemoryStoreSuite) TestEndedStayFreesBedAndBeneficiary() {
	beneficiaryID := id.BeneficiaryID(uuid.New())
	first := s.newStay(beneficiaryID, "A", "12", models.StatusActive)
	s.Require().NoError(s.store.Create(s.ctx, first))

	first.Status = models.StatusEnded
	s.Require().NoError(s.store.Update(s.ctx, first))

	s.NoError(s.store.Create(s.ctx, s.newStay(beneficiaryID, "A", "12", models.StatusActive)))
}

func (s *InMemoryStoreSuite) TestUpdateReactivationRechecksOccupancy() {
	beneficiaryID := id.BeneficiaryID(uuid.New())
	ended := s.newStay(beneficiaryID, "A", "12", models.StatusEnded)
	s.Require().NoError(s.store.Create(s.ctx, ended))
	s.Require().NoError(s.store.Create(s.ctx, s.newStay(beneficiaryID, "B", "3", models.StatusActive)))

	ended.Status = models.StatusActive
	err := s.store.Update(s.ctx, ended)
	s.ErrorIs(err, service.ErrBeneficiaryHasActiveStay)
}

func (s *InMemoryStoreSuite) TestListFilters() {
	beneficiaryID := id.BeneficiaryID(uuid.New())
	s.Require().NoError(s.store.Create(s.ctx, s.newStay(beneficiaryID, "A", "12", models.StatusActive)))
	s.Require().NoError(s.store.Create(s.ctx, s.newStay(id.BeneficiaryID(uuid.New()), "B", "3", models.StatusEnded)))

	active := models.StatusActive
	stays, err := s.store.List(s.ctx, service.Filter{Status: &active})
	s.Require().NoError(err)
	s.Len(stays, 1)

	stays, err = s.store.List(s.ctx, service.Filter{BeneficiaryID: &beneficiaryID})
	s.Require().NoError(err)
	s.Len(stays, 1)
}

// Many goroutines race to put the same beneficiary into different beds;
// exactly one may win.
func (s *InMemoryStoreSuite) TestConcurrentCreatesAdmitOneWinner() {
	beneficiaryID := id.BeneficiaryID(uuid.New())
	stays := make([]*models.Stay, 16)
	for i := range stays {
		stays[i] = s.newStay(beneficiaryID, "A", string(rune('a'+i)), models.StatusActive)
	}

	var successes atomic.Int32
	group, ctx := errgroup.WithContext(s.ctx)
	for _, stay := range stays {
		group.Go(func() error {
			if err := s.store.Create(ctx, stay); err == nil {
				successes.Add(1)
			}
			return nil
		})
	}
	s.Require().NoError(group.Wait())
	s.Equal(int32(1), successes.Load())
}
