package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"caseworks/internal/budget/models"
	"caseworks/internal/budget/service"
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
	s.now = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newBudget(module string, year int, initial int64) *models.Budget {
	budget, err := models.NewBudget(id.BudgetID(uuid.New()), module, year, decimal.NewFromInt(initial), "", s.now)
	s.Require().NoError(err)
	return budget
}

func (s *InMemoryStoreSuite) newExpense(budgetID id.BudgetID, amount int64) *models.Expense {
	expense, err := models.NewExpense(id.ExpenseID(uuid.New()), budgetID, "supplies", decimal.NewFromInt(amount), s.now, "", "", id.UserID(uuid.New()), s.now)
	s.Require().NoError(err)
	return expense
}

func (s *InMemoryStoreSuite) TestRejectsDuplicateModuleYear() {
	s.Require().NoError(s.store.CreateBudget(s.ctx, s.newBudget("Kitchen", 2026, 5000)))

	err := s.store.CreateBudget(s.ctx, s.newBudget("Kitchen", 2026, 3000))
	s.ErrorIs(err, service.ErrDuplicateModuleYear)

	s.NoError(s.store.CreateBudget(s.ctx, s.newBudget("Kitchen", 2027, 3000)))
	s.NoError(s.store.CreateBudget(s.ctx, s.newBudget("Shelter", 2026, 3000)))
}

func (s *InMemoryStoreSuite) TestRecordExpenseConsumesHeadroom() {
	budget := s.newBudget("Kitchen", 2026, 1000)
	s.Require().NoError(s.store.CreateBudget(s.ctx, budget))

	updated, err := s.store.RecordExpense(s.ctx, s.newExpense(budget.ID, 400))
	s.Require().NoError(err)
	s.True(updated.UsedAmount.Equal(decimal.NewFromInt(400)))
	s.True(updated.Remaining().Equal(decimal.NewFromInt(600)))
}

func (s *InMemoryStoreSuite) TestRecordExpenseRejectsOverspend() {
	budget := s.newBudget("Kitchen", 2026, 1000)
	s.Require().NoError(s.store.CreateBudget(s.ctx, budget))
	_, err := s.store.RecordExpense(s.ctx, s.newExpense(budget.ID, 900))
	s.Require().NoError(err)

	_, err = s.store.RecordExpense(s.ctx, s.newExpense(budget.ID, 200))
	s.ErrorIs(err, service.ErrInsufficientBudget)

	// an exact fill is allowed
	_, err = s.store.RecordExpense(s.ctx, s.newExpense(budget.ID, 100))
	s.NoError(err)
}

func (s *InMemoryStoreSuite) TestRecordRevenueRaisesCeiling() {
	budget := s.newBudget("Kitchen", 2026, 1000)
	s.Require().NoError(s.store.CreateBudget(s.ctx, budget))
	_, err := s.store.RecordExpense(s.ctx, s.newExpense(budget.ID, 1000))
	s.Require().NoError(err)

	revenue, err := models.NewRevenue(id.RevenueID(uuid.New()), budget.ID, "grant", decimal.NewFromInt(500), s.now, "", id.UserID(uuid.New()), s.now)
	s.Require().NoError(err)
	updated, err := s.store.RecordRevenue(s.ctx, revenue)
	s.Require().NoError(err)
	s.True(updated.Remaining().Equal(decimal.NewFromInt(500)))

	_, err = s.store.RecordExpense(s.ctx, s.newExpense(budget.ID, 500))
	s.NoError(err)
}

func (s *InMemoryStoreSuite) TestDeleteRejectsReferencedBudget() {
	budget := s.newBudget("Kitchen", 2026, 1000)
	s.Require().NoError(s.store.CreateBudget(s.ctx, budget))
	_, err := s.store.RecordExpense(s.ctx, s.newExpense(budget.ID, 100))
	s.Require().NoError(err)

	s.ErrorIs(s.store.DeleteBudget(s.ctx, budget.ID), service.ErrBudgetReferenced)

	empty := s.newBudget("Shelter", 2026, 1000)
	s.Require().NoError(s.store.CreateBudget(s.ctx, empty))
	s.NoError(s.store.DeleteBudget(s.ctx, empty.ID))
}

func (s *InMemoryStoreSuite) TestUpdateRejectsUsedAboveCeiling() {
	budget := s.newBudget("Kitchen", 2026, 1000)
	s.Require().NoError(s.store.CreateBudget(s.ctx, budget))

	over := decimal.NewFromInt(1200)
	_, err := s.store.UpdateBudget(s.ctx, budget.ID, models.Patch{UsedAmount: &over}, s.now)
	s.ErrorIs(err, service.ErrCeilingExceeded)
}

// A patch that touches only the description must not disturb consumption
// recorded by expenses posted since the caller last read the budget.
func (s *InMemoryStoreSuite) TestPartialUpdatePreservesConsumption() {
	budget := s.newBudget("Kitchen", 2026, 1000)
	s.Require().NoError(s.store.CreateBudget(s.ctx, budget))
	_, err := s.store.RecordExpense(s.ctx, s.newExpense(budget.ID, 400))
	s.Require().NoError(err)

	description := "winter provisioning"
	updated, err := s.store.UpdateBudget(s.ctx, budget.ID, models.Patch{Description: &description}, s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(description, updated.Description)
	s.True(updated.UsedAmount.Equal(decimal.NewFromInt(400)))

	final, err := s.store.FindBudgetByID(s.ctx, budget.ID)
	s.Require().NoError(err)
	s.True(final.UsedAmount.Equal(decimal.NewFromInt(400)))
}

func (s *InMemoryStoreSuite) TestExpenseAgainstMissingBudget() {
	_, err := s.store.RecordExpense(s.ctx, s.newExpense(id.BudgetID(uuid.New()), 100))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// Concurrent expenses race for the last headroom; the total recorded spend
// must never exceed the ceiling.
func (s *InMemoryStoreSuite) TestConcurrentExpensesNeverOverspend() {
	budget := s.newBudget("Kitchen", 2026, 1000)
	s.Require().NoError(s.store.CreateBudget(s.ctx, budget))

	expenses := make([]*models.Expense, 16)
	for i := range expenses {
		expenses[i] = s.newExpense(budget.ID, 300)
	}

	var successes atomic.Int32
	group, ctx := errgroup.WithContext(s.ctx)
	for _, expense := range expenses {
		group.Go(func() error {
			if _, err := s.store.RecordExpense(ctx, expense); err == nil {
				successes.Add(1)
			}
			return nil
		})
	}
	s.Require().NoError(group.Wait())
	s.Equal(int32(3), successes.Load())

	final, err := s.store.FindBudgetByID(s.ctx, budget.ID)
	s.Require().NoError(err)
	s.True(final.UsedAmount.LessThanOrEqual(final.InitialAmount))
}
