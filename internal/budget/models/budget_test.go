package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "caseworks/pkg/domain"
	dErrors "caseworks/pkg/domain-errors"
)

func TestNewBudget(t *testing.T) {
	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("starts with zero consumption", func(t *testing.T) {
		budget, err := NewBudget(id.BudgetID(uuid.New()), "Kitchen", 2026, decimal.NewFromInt(5000), "", now)
		require.NoError(t, err)
		assert.True(t, budget.UsedAmount.IsZero())
		assert.True(t, budget.Remaining().Equal(decimal.NewFromInt(5000)))
	})

	t.Run("rejects missing module", func(t *testing.T) {
		_, err := NewBudget(id.BudgetID(uuid.New()), "", 2026, decimal.NewFromInt(5000), "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewBudget(id.BudgetID(uuid.New()), "Kitchen", 2026, decimal.Zero, "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestBudgetMarshalCarriesRemaining(t *testing.T) {
	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	budget, err := NewBudget(id.BudgetID(uuid.New()), "Kitchen", 2026, decimal.NewFromInt(5000), "", now)
	require.NoError(t, err)
	budget.UsedAmount = decimal.NewFromInt(1200)

	body, err := json.Marshal(budget)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.JSONEq(t, `"3800"`, string(decoded["remaining"]))
}

func TestBudgetApply(t *testing.T) {
	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	budget, err := NewBudget(id.BudgetID(uuid.New()), "Kitchen", 2026, decimal.NewFromInt(5000), "", now)
	require.NoError(t, err)

	t.Run("rejects negative used amount", func(t *testing.T) {
		negative := decimal.NewFromInt(-1)
		err := budget.Apply(Patch{UsedAmount: &negative}, later)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("updates ceiling and timestamp", func(t *testing.T) {
		raised := decimal.NewFromInt(6000)
		require.NoError(t, budget.Apply(Patch{InitialAmount: &raised}, later))
		assert.True(t, budget.InitialAmount.Equal(raised))
		assert.Equal(t, later, budget.UpdatedAt)
	})
}

func TestNewExpense(t *testing.T) {
	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	budgetID := id.BudgetID(uuid.New())
	createdBy := id.UserID(uuid.New())

	t.Run("valid", func(t *testing.T) {
		expense, err := NewExpense(id.ExpenseID(uuid.New()), budgetID, "groceries", decimal.NewFromInt(120), now, "food", "", createdBy, now)
		require.NoError(t, err)
		assert.Equal(t, budgetID, expense.BudgetID)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewExpense(id.ExpenseID(uuid.New()), budgetID, "groceries", decimal.Zero, now, "", "", createdBy, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects missing label", func(t *testing.T) {
		_, err := NewExpense(id.ExpenseID(uuid.New()), budgetID, "", decimal.NewFromInt(120), now, "", "", createdBy, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestNewRevenue(t *testing.T) {
	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("rejects missing source", func(t *testing.T) {
		_, err := NewRevenue(id.RevenueID(uuid.New()), id.BudgetID(uuid.New()), "", decimal.NewFromInt(300), now, "", id.UserID(uuid.New()), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects zero date", func(t *testing.T) {
		_, err := NewRevenue(id.RevenueID(uuid.New()), id.BudgetID(uuid.New()), "grant", decimal.NewFromInt(300), time.Time{}, "", id.UserID(uuid.New()), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
