// Package domain defines typed identifiers shared across modules.
//
// Each entity gets its own UUID-backed type so the compiler rejects a
// BeneficiaryID where a UserID is expected. Parse helpers enforce the
// invariant that IDs are valid, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "caseworks/pkg/domain-errors"
)

type (
	// UserID identifies an authenticated agent (case worker, accountant,
	// director).
	UserID uuid.UUID
	// BeneficiaryID identifies a person receiving services. Beneficiary
	// records are owned by an external collaborator; this core only
	// references them.
	BeneficiaryID uuid.UUID
	// StayID identifies a bed occupancy record.
	StayID uuid.UUID
	// BudgetID identifies a yearly module budget.
	BudgetID uuid.UUID
	// ExpenseID identifies an immutable expense ledger entry.
	ExpenseID uuid.UUID
	// RevenueID identifies an immutable revenue ledger entry.
	RevenueID uuid.UUID
	// TimeSessionID identifies a work-time tracking session.
	TimeSessionID uuid.UUID
)

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id BeneficiaryID) String() string { return uuid.UUID(id).String() }
func (id StayID) String() string        { return uuid.UUID(id).String() }
func (id BudgetID) String() string      { return uuid.UUID(id).String() }
func (id ExpenseID) String() string     { return uuid.UUID(id).String() }
func (id RevenueID) String() string     { return uuid.UUID(id).String() }
func (id TimeSessionID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id BeneficiaryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id StayID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id BudgetID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ExpenseID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id RevenueID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TimeSessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", kind)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", kind)
	}
	return parsed, nil
}

// ParseUserID parses and validates a user ID from its string form.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user id")
	return UserID(parsed), err
}

// ParseBeneficiaryID parses and validates a beneficiary ID from its string form.
func ParseBeneficiaryID(raw string) (BeneficiaryID, error) {
	parsed, err := parseUUID(raw, "beneficiary id")
	return BeneficiaryID(parsed), err
}

// ParseStayID parses and validates a stay ID from its string form.
func ParseStayID(raw string) (StayID, error) {
	parsed, err := parseUUID(raw, "stay id")
	return StayID(parsed), err
}

// ParseBudgetID parses and validates a budget ID from its string form.
func ParseBudgetID(raw string) (BudgetID, error) {
	parsed, err := parseUUID(raw, "budget id")
	return BudgetID(parsed), err
}

// ParseExpenseID parses and validates an expense ID from its string form.
func ParseExpenseID(raw string) (ExpenseID, error) {
	parsed, err := parseUUID(raw, "expense id")
	return ExpenseID(parsed), err
}

// ParseRevenueID parses and validates a revenue ID from its string form.
func ParseRevenueID(raw string) (RevenueID, error) {
	parsed, err := parseUUID(raw, "revenue id")
	return RevenueID(parsed), err
}

// ParseTimeSessionID parses and validates a time session ID from its string form.
func ParseTimeSessionID(raw string) (TimeSessionID, error) {
	parsed, err := parseUUID(raw, "session id")
	return TimeSessionID(parsed), err
}
