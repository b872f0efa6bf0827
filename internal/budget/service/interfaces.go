package service

import (
	"context"
	"errors"
	"time"

	"caseworks/internal/budget/models"
	id "caseworks/pkg/domain"
)

// Store-level facts about why a write was rejected. The guarded-update and
// uniqueness checks run atomically with the write inside the store; the
// service never re-checks a balance it read earlier.
var (
	// ErrDuplicateModuleYear means a budget already exists for (module, year).
	ErrDuplicateModuleYear = errors.New("budget already exists for module and year")
	// ErrInsufficientBudget means an expense would push consumption past the ceiling.
	ErrInsufficientBudget = errors.New("insufficient remaining budget")
	// ErrBudgetReferenced means ledger entries still reference the budget.
	ErrBudgetReferenced = errors.New("budget has ledger entries")
	// ErrCeilingExceeded means a direct update would leave used above initial.
	ErrCeilingExceeded = errors.New("used amount exceeds ceiling")
)

// Filter narrows budget listings. Nil fields match everything.
type Filter struct {
	Module *string
	Year   *int
}

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// Store persists budgets and their immutable ledger entries.
//
// RecordExpense and RecordRevenue adjust the budget totals and insert the
// ledger row as one atomic unit; the updated budget is returned.
//
// UpdateBudget applies the patch to the current row under a row lock, so a
// patch racing a concurrent expense never writes back a stale used amount.
type Store interface {
	CreateBudget(ctx context.Context, budget *models.Budget) error
	FindBudgetByID(ctx context.Context, budgetID id.BudgetID) (*models.Budget, error)
	UpdateBudget(ctx context.Context, budgetID id.BudgetID, patch models.Patch, now time.Time) (*models.Budget, error)
	DeleteBudget(ctx context.Context, budgetID id.BudgetID) error
	ListBudgets(ctx context.Context, filter Filter) ([]*models.Budget, error)

	RecordExpense(ctx context.Context, expense *models.Expense) (*models.Budget, error)
	RecordRevenue(ctx context.Context, revenue *models.Revenue) (*models.Budget, error)
	ListExpenses(ctx context.Context, budgetID id.BudgetID) ([]*models.Expense, error)
	ListRevenues(ctx context.Context, budgetID id.BudgetID) ([]*models.Revenue, error)
}
