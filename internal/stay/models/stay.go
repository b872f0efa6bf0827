package models

import (
	"time"

	id "caseworks/pkg/domain"
	dErrors "caseworks/pkg/domain-errors"
)

// Status of a stay. ACTIVE means the bed is occupied right now.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusEnded     Status = "ENDED"
	StatusSuspended Status = "SUSPENDED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusEnded, StatusSuspended:
		return true
	}
	return false
}

// Stay is a resident's occupancy of one bed.
//
// Invariants (enforced by the stores, not by this struct):
//   - a beneficiary has at most one ACTIVE stay
//   - a (dormitory, bed) pair hosts at most one ACTIVE stay
type Stay struct {
	ID            id.StayID        `json:"id"`
	BeneficiaryID id.BeneficiaryID `json:"beneficiary_id"`
	Dormitory     string           `json:"dormitory"`
	Bed           string           `json:"bed"`
	CheckInDate   time.Time        `json:"check_in_date"`
	CheckOutDate  *time.Time       `json:"check_out_date,omitempty"`
	Status        Status           `json:"status"`
	CreatedBy     id.UserID        `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewStay constructs an ACTIVE stay after validating required fields.
func NewStay(stayID id.StayID, beneficiaryID id.BeneficiaryID, dormitory, bed string, checkIn time.Time, checkOut *time.Time, status Status, createdBy id.UserID, now time.Time) (*Stay, error) {
	if dormitory == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "dormitory is required")
	}
	if bed == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "bed is required")
	}
	if checkIn.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "check-in date is required")
	}
	if status == "" {
		status = StatusActive
	}
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown stay status %q", status)
	}
	return &Stay{
		ID:            stayID,
		BeneficiaryID: beneficiaryID,
		Dormitory:     dormitory,
		Bed:           bed,
		CheckInDate:   checkIn,
		CheckOutDate:  checkOut,
		Status:        status,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Patch describes a partial update. Nil fields are left unchanged.
type Patch struct {
	Dormitory    *string
	Bed          *string
	CheckInDate  *time.Time
	CheckOutDate *time.Time
	Status       *Status
}

// Apply validates the patch and mutates the stay in place.
func (s *Stay) Apply(p Patch, now time.Time) error {
	if p.Dormitory != nil {
		if *p.Dormitory == "" {
			return dErrors.New(dErrors.CodeValidation, "dormitory cannot be empty")
		}
		s.Dormitory = *p.Dormitory
	}
	if p.Bed != nil {
		if *p.Bed == "" {
			return dErrors.New(dErrors.CodeValidation, "bed cannot be empty")
		}
		s.Bed = *p.Bed
	}
	if p.CheckInDate != nil {
		if p.CheckInDate.IsZero() {
			return dErrors.New(dErrors.CodeValidation, "check-in date cannot be empty")
		}
		s.CheckInDate = *p.CheckInDate
	}
	if p.CheckOutDate != nil {
		s.CheckOutDate = p.CheckOutDate
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return dErrors.Newf(dErrors.CodeValidation, "unknown stay status %q", *p.Status)
		}
		s.Status = *p.Status
	}
	s.UpdatedAt = now
	return nil
}
