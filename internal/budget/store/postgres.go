package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"caseworks/internal/budget/models"
	"caseworks/internal/budget/service"
	id "caseworks/pkg/domain"
	"caseworks/pkg/platform/sentinel"
	txcontext "caseworks/pkg/platform/tx"
)

// Schema constraints carry the ledger invariants: one budget per
// (module, year), consumption never above the ceiling, and no deleting a
// budget that ledger rows still reference.
const (
	constraintModuleYear    = "budgets_module_year_key"
	constraintUsedInCeiling = "budgets_used_within_ceiling"
)

// PostgresStore persists budgets and ledger entries. Balance checks run
// inside the write statements themselves, so concurrent expenses cannot
// jointly overspend a budget.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateBudget(ctx context.Context, budget *models.Budget) error {
	query := `
		INSERT INTO budgets (id, module, year, initial_amount, used_amount, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(budget.ID),
		budget.Module,
		budget.Year,
		budget.InitialAmount,
		budget.UsedAmount,
		budget.Description,
		budget.CreatedAt,
		budget.UpdatedAt,
	)
	if err != nil {
		if constraintErr := ledgerViolation(err); constraintErr != nil {
			return constraintErr
		}
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBudgetByID(ctx context.Context, budgetID id.BudgetID) (*models.Budget, error) {
	query := `
		SELECT id, module, year, initial_amount, used_amount, description, created_at, updated_at
		FROM budgets
		WHERE id = $1
	`
	budget, err := scanBudget(s.db.QueryRowContext(ctx, query, uuid.UUID(budgetID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find budget: %w", err)
	}
	return budget, nil
}

// UpdateBudget applies the patch against the current row under FOR UPDATE,
// so a concurrent expense committed in between can never be overwritten with
// a stale used amount.
func (s *PostgresStore) UpdateBudget(ctx context.Context, budgetID id.BudgetID, patch models.Patch, now time.Time) (*models.Budget, error) {
	var budget *models.Budget
	err := txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		sqlTx, _ := txcontext.From(ctx)

		query := `
			SELECT id, module, year, initial_amount, used_amount, description, created_at, updated_at
			FROM budgets
			WHERE id = $1
			FOR UPDATE
		`
		current, err := scanBudget(sqlTx.QueryRowContext(ctx, query, uuid.UUID(budgetID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock budget: %w", err)
		}

		if err := current.Apply(patch, now); err != nil {
			return err
		}

		update := `
			UPDATE budgets
			SET initial_amount = $2, used_amount = $3, description = $4, updated_at = $5
			WHERE id = $1
		`
		if _, err := sqlTx.ExecContext(ctx, update,
			uuid.UUID(current.ID),
			current.InitialAmount,
			current.UsedAmount,
			current.Description,
			current.UpdatedAt,
		); err != nil {
			if constraintErr := ledgerViolation(err); constraintErr != nil {
				return constraintErr
			}
			return fmt.Errorf("update budget: %w", err)
		}

		budget = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *PostgresStore) DeleteBudget(ctx context.Context, budgetID id.BudgetID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, uuid.UUID(budgetID))
	if err != nil {
		if constraintErr := ledgerViolation(err); constraintErr != nil {
			return constraintErr
		}
		return fmt.Errorf("delete budget: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListBudgets(ctx context.Context, filter service.Filter) ([]*models.Budget, error) {
	query := `
		SELECT id, module, year, initial_amount, used_amount, description, created_at, updated_at
		FROM budgets
		WHERE ($1::text IS NULL OR module = $1)
		  AND ($2::int IS NULL OR year = $2)
		ORDER BY year DESC, module
	`
	var moduleArg any
	if filter.Module != nil {
		moduleArg = *filter.Module
	}
	var yearArg any
	if filter.Year != nil {
		yearArg = *filter.Year
	}

	rows, err := s.db.QueryContext(ctx, query, moduleArg, yearArg)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// RecordExpense increments consumption and inserts the ledger row in one
// transaction. The UPDATE carries its own balance guard, so a row that isn't
// found is either a missing budget or an overspend, never a stale read.
func (s *PostgresStore) RecordExpense(ctx context.Context, expense *models.Expense) (*models.Budget, error) {
	var budget *models.Budget
	err := txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		sqlTx, _ := txcontext.From(ctx)

		query := `
			UPDATE budgets
			SET used_amount = used_amount + $2, updated_at = $3
			WHERE id = $1 AND used_amount + $2 <= initial_amount
			RETURNING id, module, year, initial_amount, used_amount, description, created_at, updated_at
		`
		updated, err := scanBudget(sqlTx.QueryRowContext(ctx, query, uuid.UUID(expense.BudgetID), expense.Amount, expense.CreatedAt))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return s.classifyGuardMiss(ctx, sqlTx, expense.BudgetID)
			}
			return fmt.Errorf("consume budget: %w", err)
		}

		insert := `
			INSERT INTO expenses (id, budget_id, label, amount, date, category, justification, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		if _, err := sqlTx.ExecContext(ctx, insert,
			uuid.UUID(expense.ID),
			uuid.UUID(expense.BudgetID),
			expense.Label,
			expense.Amount,
			expense.Date,
			expense.Category,
			expense.Justification,
			uuid.UUID(expense.CreatedBy),
			expense.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}

		budget = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// RecordRevenue raises the ceiling and inserts the ledger row in one
// transaction.
func (s *PostgresStore) RecordRevenue(ctx context.Context, revenue *models.Revenue) (*models.Budget, error) {
	var budget *models.Budget
	err := txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		sqlTx, _ := txcontext.From(ctx)

		query := `
			UPDATE budgets
			SET initial_amount = initial_amount + $2, updated_at = $3
			WHERE id = $1
			RETURNING id, module, year, initial_amount, used_amount, description, created_at, updated_at
		`
		updated, err := scanBudget(sqlTx.QueryRowContext(ctx, query, uuid.UUID(revenue.BudgetID), revenue.Amount, revenue.CreatedAt))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("raise budget ceiling: %w", err)
		}

		insert := `
			INSERT INTO revenues (id, budget_id, source, amount, date, description, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		if _, err := sqlTx.ExecContext(ctx, insert,
			uuid.UUID(revenue.ID),
			uuid.UUID(revenue.BudgetID),
			revenue.Source,
			revenue.Amount,
			revenue.Date,
			revenue.Description,
			uuid.UUID(revenue.CreatedBy),
			revenue.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert revenue: %w", err)
		}

		budget = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *PostgresStore) ListExpenses(ctx context.Context, budgetID id.BudgetID) ([]*models.Expense, error) {
	query := `
		SELECT id, budget_id, label, amount, date, category, justification, created_by, created_at
		FROM expenses
		WHERE budget_id = $1
		ORDER BY date DESC, created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(budgetID))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		var expense models.Expense
		var expenseID, refID, createdBy uuid.UUID
		if err := rows.Scan(&expenseID, &refID, &expense.Label, &expense.Amount, &expense.Date, &expense.Category, &expense.Justification, &createdBy, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expense.ID = id.ExpenseID(expenseID)
		expense.BudgetID = id.BudgetID(refID)
		expense.CreatedBy = id.UserID(createdBy)
		expenses = append(expenses, &expense)
	}
	return expenses, rows.Err()
}

func (s *PostgresStore) ListRevenues(ctx context.Context, budgetID id.BudgetID) ([]*models.Revenue, error) {
	query := `
		SELECT id, budget_id, source, amount, date, description, created_by, created_at
		FROM revenues
		WHERE budget_id = $1
		ORDER BY date DESC, created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(budgetID))
	if err != nil {
		return nil, fmt.Errorf("list revenues: %w", err)
	}
	defer rows.Close()

	var revenues []*models.Revenue
	for rows.Next() {
		var revenue models.Revenue
		var revenueID, refID, createdBy uuid.UUID
		if err := rows.Scan(&revenueID, &refID, &revenue.Source, &revenue.Amount, &revenue.Date, &revenue.Description, &createdBy, &revenue.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revenue: %w", err)
		}
		revenue.ID = id.RevenueID(revenueID)
		revenue.BudgetID = id.BudgetID(refID)
		revenue.CreatedBy = id.UserID(createdBy)
		revenues = append(revenues, &revenue)
	}
	return revenues, rows.Err()
}

// classifyGuardMiss distinguishes "budget does not exist" from "expense would
// overspend" after the guarded UPDATE matched no row.
func (s *PostgresStore) classifyGuardMiss(ctx context.Context, sqlTx *sql.Tx, budgetID id.BudgetID) error {
	var exists bool
	if err := sqlTx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM budgets WHERE id = $1)`, uuid.UUID(budgetID)).Scan(&exists); err != nil {
		return fmt.Errorf("classify budget guard miss: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return service.ErrInsufficientBudget
}

// ledgerViolation maps constraint violations to the store-level facts the
// service understands. Returns nil for unrelated errors.
func ledgerViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case "23505":
		if pqErr.Constraint == constraintModuleYear {
			return service.ErrDuplicateModuleYear
		}
	case "23503":
		return service.ErrBudgetReferenced
	case "23514":
		if pqErr.Constraint == constraintUsedInCeiling {
			return service.ErrCeilingExceeded
		}
	}
	return nil
}

type budgetRow interface {
	Scan(dest ...any) error
}

func scanBudget(row budgetRow) (*models.Budget, error) {
	var budget models.Budget
	var budgetID uuid.UUID
	if err := row.Scan(&budgetID, &budget.Module, &budget.Year, &budget.InitialAmount, &budget.UsedAmount, &budget.Description, &budget.CreatedAt, &budget.UpdatedAt); err != nil {
		return nil, err
	}
	budget.ID = id.BudgetID(budgetID)
	return &budget, nil
}
