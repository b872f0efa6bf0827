package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	budgetmetrics "caseworks/internal/budget/metrics"
	"caseworks/internal/budget/models"
	"caseworks/internal/platform/authz"
	id "caseworks/pkg/domain"
	dErrors "caseworks/pkg/domain-errors"
	"caseworks/pkg/platform/audit"
	"caseworks/pkg/platform/sentinel"
	"caseworks/pkg/requestcontext"
)

// Service maintains the running ledger: expenses consume budget headroom,
// revenues enlarge the ceiling, and consumption never exceeds the ceiling.
type Service struct {
	store          Store
	auditPublisher audit.Publisher
	metrics        *budgetmetrics.Metrics
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *budgetmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("budget store is required")
	}
	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateBudgetParams carries the input for a new budget.
type CreateBudgetParams struct {
	Module        string
	Year          int
	InitialAmount decimal.Decimal
	Description   string
}

// CreateBudget opens a (module, year) allocation. Finance-capable roles only.
func (s *Service) CreateBudget(ctx context.Context, params CreateBudgetParams) (*models.Budget, error) {
	if err := requireCapability(ctx, authz.CapBudgetWrite); err != nil {
		return nil, err
	}

	budget, err := models.NewBudget(id.BudgetID(uuid.New()), params.Module, params.Year, params.InitialAmount, params.Description, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateBudget(ctx, budget); err != nil {
		return nil, translateStoreErr(err, "failed to create budget")
	}

	s.emit(ctx, audit.EventBudgetCreated, budget.ID.String(), fmt.Sprintf("%s/%d ceiling=%s", budget.Module, budget.Year, budget.InitialAmount))
	if s.metrics != nil {
		s.metrics.IncrementBudgetsCreated()
	}
	return budget, nil
}

// UpdateBudget patches a budget. Finance-capable roles only. A privileged
// used-amount override must still leave consumption within the ceiling; the
// store enforces that atomically.
func (s *Service) UpdateBudget(ctx context.Context, budgetID id.BudgetID, patch models.Patch) (*models.Budget, error) {
	if err := requireCapability(ctx, authz.CapBudgetWrite); err != nil {
		return nil, err
	}

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateBudget(ctx, budgetID, patch, requestcontext.Now(ctx))
	if err != nil {
		return nil, translateStoreErr(err, "failed to update budget")
	}

	s.emit(ctx, audit.EventBudgetUpdated, updated.ID.String(), fmt.Sprintf("ceiling=%s used=%s", updated.InitialAmount, updated.UsedAmount))
	return updated, nil
}

// DeleteBudget removes a budget with no ledger entries. Director only.
func (s *Service) DeleteBudget(ctx context.Context, budgetID id.BudgetID) error {
	if err := requireCapability(ctx, authz.CapBudgetDelete); err != nil {
		return err
	}

	if err := s.store.DeleteBudget(ctx, budgetID); err != nil {
		return translateStoreErr(err, "failed to delete budget")
	}

	s.emit(ctx, audit.EventBudgetDeleted, budgetID.String(), "")
	return nil
}

// GetBudget returns one budget.
func (s *Service) GetBudget(ctx context.Context, budgetID id.BudgetID) (*models.Budget, error) {
	if requestcontext.UserID(ctx).IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	budget, err := s.store.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load budget")
	}
	return budget, nil
}

// ListBudgets returns budgets matching the filter.
func (s *Service) ListBudgets(ctx context.Context, filter Filter) ([]*models.Budget, error) {
	if requestcontext.UserID(ctx).IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	budgets, err := s.store.ListBudgets(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list budgets")
	}
	return budgets, nil
}

// CreateExpenseParams carries the input for a new expense.
type CreateExpenseParams struct {
	BudgetID      id.BudgetID
	Label         string
	Amount        decimal.Decimal
	Date          time.Time
	Category      string
	Justification string
}

// CreateExpense posts an expense against a budget. The remaining-headroom
// check and the consumption increment execute as one guarded update in the
// store, so two concurrent expenses can never jointly overspend.
func (s *Service) CreateExpense(ctx context.Context, params CreateExpenseParams) (*models.Expense, error) {
	if err := requireCapability(ctx, authz.CapBudgetWrite); err != nil {
		return nil, err
	}

	expense, err := models.NewExpense(id.ExpenseID(uuid.New()), params.BudgetID, params.Label, params.Amount, params.Date, params.Category, params.Justification, requestcontext.UserID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	budget, err := s.store.RecordExpense(ctx, expense)
	if err != nil {
		derr := translateStoreErr(err, "failed to record expense")
		if s.metrics != nil && dErrors.HasCode(derr, dErrors.CodeValidation) {
			s.metrics.IncrementExpensesRejected()
		}
		return nil, derr
	}

	s.emit(ctx, audit.EventExpenseRecorded, expense.ID.String(), fmt.Sprintf("budget=%s amount=%s remaining=%s", expense.BudgetID, expense.Amount, budget.Remaining()))
	if s.metrics != nil {
		s.metrics.IncrementExpensesRecorded()
	}
	return expense, nil
}

// CreateRevenueParams carries the input for a new revenue.
type CreateRevenueParams struct {
	BudgetID    id.BudgetID
	Source      string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// CreateRevenue posts a revenue, enlarging the budget ceiling by its amount.
func (s *Service) CreateRevenue(ctx context.Context, params CreateRevenueParams) (*models.Revenue, error) {
	if err := requireCapability(ctx, authz.CapBudgetWrite); err != nil {
		return nil, err
	}

	revenue, err := models.NewRevenue(id.RevenueID(uuid.New()), params.BudgetID, params.Source, params.Amount, params.Date, params.Description, requestcontext.UserID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	budget, err := s.store.RecordRevenue(ctx, revenue)
	if err != nil {
		return nil, translateStoreErr(err, "failed to record revenue")
	}

	s.emit(ctx, audit.EventRevenueRecorded, revenue.ID.String(), fmt.Sprintf("budget=%s amount=%s ceiling=%s", revenue.BudgetID, revenue.Amount, budget.InitialAmount))
	if s.metrics != nil {
		s.metrics.IncrementRevenuesRecorded()
	}
	return revenue, nil
}

// ListExpenses returns a budget's expense ledger.
func (s *Service) ListExpenses(ctx context.Context, budgetID id.BudgetID) ([]*models.Expense, error) {
	if requestcontext.UserID(ctx).IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	expenses, err := s.store.ListExpenses(ctx, budgetID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to list expenses")
	}
	return expenses, nil
}

// ListRevenues returns a budget's revenue ledger.
func (s *Service) ListRevenues(ctx context.Context, budgetID id.BudgetID) ([]*models.Revenue, error) {
	if requestcontext.UserID(ctx).IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	revenues, err := s.store.ListRevenues(ctx, budgetID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to list revenues")
	}
	return revenues, nil
}

func requireCapability(ctx context.Context, cap authz.Capability) error {
	if requestcontext.UserID(ctx).IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if !authz.Allows(requestcontext.Role(ctx), cap) {
		return dErrors.New(dErrors.CodeForbidden, "caller role does not permit this operation")
	}
	return nil
}

func translateStoreErr(err error, internalMsg string) error {
	switch {
	case errors.Is(err, ErrDuplicateModuleYear):
		return dErrors.New(dErrors.CodeConflict, "a budget already exists for this module and year")
	case errors.Is(err, ErrInsufficientBudget):
		return dErrors.New(dErrors.CodeValidation, "expense exceeds the remaining budget")
	case errors.Is(err, ErrBudgetReferenced):
		return dErrors.New(dErrors.CodeConflict, "budget still has expenses or revenues attached")
	case errors.Is(err, ErrCeilingExceeded):
		return dErrors.New(dErrors.CodeValidation, "used amount cannot exceed the budget ceiling")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "budget not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
	}
}

func (s *Service) emit(ctx context.Context, action, subject, detail string) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		ActorID:   requestcontext.UserID(ctx),
		Action:    action,
		Subject:   subject,
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
