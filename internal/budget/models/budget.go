package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	id "caseworks/pkg/domain"
	dErrors "caseworks/pkg/domain-errors"
)

// Budget is a yearly allocation scoped to an operational module ("Kitchen",
// "Shelter"). InitialAmount is the current spendable ceiling, not the
// original grant: posting a revenue enlarges it. UsedAmount accumulates
// expenses and never exceeds the ceiling.
type Budget struct {
	ID            id.BudgetID     `json:"id"`
	Module        string          `json:"module"`
	Year          int             `json:"year"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
	UsedAmount    decimal.Decimal `json:"used_amount"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Remaining returns the spendable headroom.
func (b *Budget) Remaining() decimal.Decimal {
	return b.InitialAmount.Sub(b.UsedAmount)
}

// MarshalJSON adds the derived remaining amount so clients never compute it.
func (b Budget) MarshalJSON() ([]byte, error) {
	type alias Budget
	return json.Marshal(struct {
		alias
		Remaining decimal.Decimal `json:"remaining"`
	}{alias(b), b.Remaining()})
}

// NewBudget constructs a budget with zero consumption.
func NewBudget(budgetID id.BudgetID, module string, year int, initialAmount decimal.Decimal, description string, now time.Time) (*Budget, error) {
	if module == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "module is required")
	}
	if year <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "year is required")
	}
	if !initialAmount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "initial amount must be positive")
	}
	return &Budget{
		ID:            budgetID,
		Module:        module,
		Year:          year,
		InitialAmount: initialAmount,
		UsedAmount:    decimal.Zero,
		Description:   description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Patch describes a partial budget update. UsedAmount is an administrative
// override for privileged callers, not derived from the ledger.
type Patch struct {
	InitialAmount *decimal.Decimal
	UsedAmount    *decimal.Decimal
	Description   *string
}

// Validate checks the supplied fields in isolation. The used-within-ceiling
// invariant needs the current row and is re-checked by the store atomically
// with the write.
func (p Patch) Validate() error {
	if p.InitialAmount != nil && !p.InitialAmount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "initial amount must be positive")
	}
	if p.UsedAmount != nil && p.UsedAmount.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "used amount cannot be negative")
	}
	return nil
}

// Apply validates the patch and mutates the budget in place. Fields the
// patch leaves nil keep their current values.
func (b *Budget) Apply(p Patch, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.InitialAmount != nil {
		b.InitialAmount = *p.InitialAmount
	}
	if p.UsedAmount != nil {
		b.UsedAmount = *p.UsedAmount
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	b.UpdatedAt = now
	return nil
}
