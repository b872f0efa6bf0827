package store

import (
	"context"
	"sync"
	"time"

	"caseworks/internal/budget/models"
	"caseworks/internal/budget/service"
	id "caseworks/pkg/domain"
	"caseworks/pkg/platform/sentinel"
)

// InMemoryStore keeps budgets and ledger entries in maps. One mutex spans
// every check and mutation, so balance checks and uniqueness hold under
// concurrent use exactly as the postgres store's constraints do.
type InMemoryStore struct {
	mu       sync.RWMutex
	budgets  map[id.BudgetID]*models.Budget
	expenses map[id.BudgetID][]*models.Expense
	revenues map[id.BudgetID][]*models.Revenue
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		budgets:  make(map[id.BudgetID]*models.Budget),
		expenses: make(map[id.BudgetID][]*models.Expense),
		revenues: make(map[id.BudgetID][]*models.Revenue),
	}
}

func (s *InMemoryStore) CreateBudget(_ context.Context, budget *models.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.budgets {
		if other.Module == budget.Module && other.Year == budget.Year {
			return service.ErrDuplicateModuleYear
		}
	}
	copied := *budget
	s.budgets[budget.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindBudgetByID(_ context.Context, budgetID id.BudgetID) (*models.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	budget, ok := s.budgets[budgetID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *budget
	return &copied, nil
}

// UpdateBudget applies the patch to the current row while holding the lock,
// so a patch racing a concurrent expense never writes back a stale used
// amount.
func (s *InMemoryStore) UpdateBudget(_ context.Context, budgetID id.BudgetID, patch models.Patch, now time.Time) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.budgets[budgetID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	updated := *current
	if err := updated.Apply(patch, now); err != nil {
		return nil, err
	}
	if updated.UsedAmount.GreaterThan(updated.InitialAmount) {
		return nil, service.ErrCeilingExceeded
	}
	s.budgets[budgetID] = &updated
	copied := updated
	return &copied, nil
}

func (s *InMemoryStore) DeleteBudget(_ context.Context, budgetID id.BudgetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.budgets[budgetID]; !ok {
		return sentinel.ErrNotFound
	}
	if len(s.expenses[budgetID]) > 0 || len(s.revenues[budgetID]) > 0 {
		return service.ErrBudgetReferenced
	}
	delete(s.budgets, budgetID)
	return nil
}

func (s *InMemoryStore) ListBudgets(_ context.Context, filter service.Filter) ([]*models.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Budget
	for _, budget := range s.budgets {
		if filter.Module != nil && budget.Module != *filter.Module {
			continue
		}
		if filter.Year != nil && budget.Year != *filter.Year {
			continue
		}
		copied := *budget
		out = append(out, &copied)
	}
	return out, nil
}

func (s *InMemoryStore) RecordExpense(_ context.Context, expense *models.Expense) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	budget, ok := s.budgets[expense.BudgetID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	newUsed := budget.UsedAmount.Add(expense.Amount)
	if newUsed.GreaterThan(budget.InitialAmount) {
		return nil, service.ErrInsufficientBudget
	}
	budget.UsedAmount = newUsed
	budget.UpdatedAt = expense.CreatedAt

	copiedEntry := *expense
	s.expenses[expense.BudgetID] = append(s.expenses[expense.BudgetID], &copiedEntry)

	copied := *budget
	return &copied, nil
}

func (s *InMemoryStore) RecordRevenue(_ context.Context, revenue *models.Revenue) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	budget, ok := s.budgets[revenue.BudgetID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	budget.InitialAmount = budget.InitialAmount.Add(revenue.Amount)
	budget.UpdatedAt = revenue.CreatedAt

	copiedEntry := *revenue
	s.revenues[revenue.BudgetID] = append(s.revenues[revenue.BudgetID], &copiedEntry)

	copied := *budget
	return &copied, nil
}

func (s *InMemoryStore) ListExpenses(_ context.Context, budgetID id.BudgetID) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.budgets[budgetID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make([]*models.Expense, 0, len(s.expenses[budgetID]))
	for _, expense := range s.expenses[budgetID] {
		copied := *expense
		out = append(out, &copied)
	}
	return out, nil
}

func (s *InMemoryStore) ListRevenues(_ context.Context, budgetID id.BudgetID) ([]*models.Revenue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.budgets[budgetID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make([]*models.Revenue, 0, len(s.revenues[budgetID]))
	for _, revenue := range s.revenues[budgetID] {
		copied := *revenue
		out = append(out, &copied)
	}
	return out, nil
}
