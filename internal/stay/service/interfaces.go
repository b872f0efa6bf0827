package service

import (
	"context"
	"errors"

	"caseworks/internal/stay/models"
	id "caseworks/pkg/domain"
)

// Store-level facts about why a write was rejected. Both the memory and the
// postgres store must perform the occupancy checks atomically with the write
// itself; services never re-check after reading.
var (
	// ErrBeneficiaryHasActiveStay means the beneficiary already occupies a bed.
	ErrBeneficiaryHasActiveStay = errors.New("beneficiary already has an active stay")
	// ErrBedOccupied means another ACTIVE stay holds the (dormitory, bed) pair.
	ErrBedOccupied = errors.New("bed already occupied")
)

// Filter narrows List results. Nil fields match everything.
type Filter struct {
	BeneficiaryID *id.BeneficiaryID
	Status        *models.Status
}

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// Store persists stays. Writes enforce the single-active-stay invariants
// atomically and report violations via ErrBeneficiaryHasActiveStay,
// ErrBedOccupied, or sentinel.ErrNotFound.
type Store interface {
	Create(ctx context.Context, stay *models.Stay) error
	FindByID(ctx context.Context, stayID id.StayID) (*models.Stay, error)
	Update(ctx context.Context, stay *models.Stay) error
	Delete(ctx context.Context, stayID id.StayID) error
	List(ctx context.Context, filter Filter) ([]*models.Stay, error)
}
