//go:build integration

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
	"caseworks/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
	now   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetPostgres(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "stays", "beneficiaries"))
}

func (s *PostgresStoreSuite) seedBeneficiary() id.BeneficiaryID {
	beneficiaryID := id.BeneficiaryID(uuid.New())
	s.Require().NoError(s.pg.SeedBeneficiary(s.ctx, beneficiaryID.String(), "test resident"))
	return beneficiaryID
}

func (s *PostgresStoreSuite) newStay(beneficiaryID id.BeneficiaryID, dormitory, bed string, status models.Status) *models.Stay {
	stay, err := models.NewStay(id.StayID(uuid.New()), beneficiaryID, dormitory, bed, s.now, nil, status, id.UserID(uuid.New()), s.now)
	s.Require().NoError(err)
	return stay
}

func (s *PostgresStoreSuite) TestCreateFindUpdateDelete() {
	beneficiaryID := s.seedBeneficiary()
	stay := s.newStay(beneficiaryID, "A", "12", models.StatusActive)
	s.Require().NoError(s.store.Create(s.ctx, stay))

	found, err := s.store.FindByID(s.ctx, stay.ID)
	s.Require().NoError(err)
	s.Equal("12", found.Bed)
	s.Equal(models.StatusActive, found.Status)

	found.Status = models.StatusEnded
	s.Require().NoError(s.store.Update(s.ctx, found))

	s.Require().NoError(s.store.Delete(s.ctx, stay.ID))
	_, err = s.store.FindByID(s.ctx, stay.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestPartialIndexEnforcesBeneficiaryExclusivity() {
	beneficiaryID := s.seedBeneficiary()
	s.Require().NoError(s.store.Create(s.ctx, s.newStay(beneficiaryID, "A", "12", models.StatusActive)))

	err := s.store.Create(s.ctx, s.newStay(beneficiaryID, "B", "3", models.StatusActive))
	s.ErrorIs(err, service.ErrBeneficiaryHasActiveStay)

	// an ended stay does not block
	s.NoError(s.store.Create(s.ctx, s.newStay(beneficiaryID, "B", "3", models.StatusEnded)))
}

func (s *PostgresStoreSuite) TestPartialIndexEnforcesBedExclusivity() {
	first := s.seedBeneficiary()
	second := s.seedBeneficiary()
	s.Require().NoError(s.store.Create(s.ctx, s.newStay(first, "A", "12", models.StatusActive)))

	err := s.store.Create(s.ctx, s.newStay(second, "A", "12", models.StatusActive))
	s.ErrorIs(err, service.ErrBedOccupied)
}

func (s *PostgresStoreSuite) TestUpdateReactivationHitsIndex() {
	beneficiaryID := s.seedBeneficiary()
	ended := s.newStay(beneficiaryID, "A", "12", models.StatusEnded)
	s.Require().NoError(s.store.Create(s.ctx, ended))
	s.Require().NoError(s.store.Create(s.ctx, s.newStay(beneficiaryID, "B", "3", models.StatusActive)))

	ended.Status = models.StatusActive
	s.ErrorIs(s.store.Update(s.ctx, ended), service.ErrBeneficiaryHasActiveStay)
}

// Concurrent inserts race for the same beneficiary; the database index must
// admit exactly one.
func (s *PostgresStoreSuite) TestConcurrentCreatesAdmitOneWinner() {
	beneficiaryID := s.seedBeneficiary()

	stays := make([]*models.Stay, 8)
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
