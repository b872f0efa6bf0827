package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "caseworks/pkg/domain"
	dErrors "caseworks/pkg/domain-errors"
)

// Expense is an immutable ledger entry consuming budget headroom.
type Expense struct {
	ID            id.ExpenseID    `json:"id"`
	BudgetID      id.BudgetID     `json:"budget_id"`
	Label         string          `json:"label"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Category      string          `json:"category,omitempty"`
	Justification string          `json:"justification,omitempty"`
	CreatedBy     id.UserID       `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewExpense validates and constructs a ledger entry.
func NewExpense(expenseID id.ExpenseID, budgetID id.BudgetID, label string, amount decimal.Decimal, date time.Time, category, justification string, createdBy id.UserID, now time.Time) (*Expense, error) {
	if label == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "label is required")
	}
	if !amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if date.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "date is required")
	}
	return &Expense{
		ID:            expenseID,
		BudgetID:      budgetID,
		Label:         label,
		Amount:        amount,
		Date:          date,
		Category:      category,
		Justification: justification,
		CreatedBy:     createdBy,
		CreatedAt:     now,
	}, nil
}

// Revenue is an immutable ledger entry enlarging the budget ceiling. The
// system tracks no available-cash balance separate from the ceiling.
type Revenue struct {
	ID          id.RevenueID    `json:"id"`
	BudgetID    id.BudgetID     `json:"budget_id"`
	Source      string          `json:"source"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
	CreatedBy   id.UserID       `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewRevenue validates and constructs a ledger entry.
func NewRevenue(revenueID id.RevenueID, budgetID id.BudgetID, source string, amount decimal.Decimal, date time.Time, description string, createdBy id.UserID, now time.Time) (*Revenue, error) {
	if source == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "source is required")
	}
	if !amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if date.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "date is required")
	}
	return &Revenue{
		ID:          revenueID,
		BudgetID:    budgetID,
		Source:      source,
		Amount:      amount,
		Date:        date,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}, nil
}
