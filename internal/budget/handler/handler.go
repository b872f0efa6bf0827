package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"caseworks/internal/budget/models"
	"caseworks/internal/budget/service"
	id "caseworks/pkg/domain"
	dErrors "caseworks/pkg/domain-errors"
	"caseworks/pkg/platform/httputil"
	"caseworks/pkg/requestcontext"
)

// Service defines the budget operations the handler exposes.
type Service interface {
	CreateBudget(ctx context.Context, params service.CreateBudgetParams) (*models.Budget, error)
	UpdateBudget(ctx context.Context, budgetID id.BudgetID, patch models.Patch) (*models.Budget, error)
	DeleteBudget(ctx context.Context, budgetID id.BudgetID) error
	GetBudget(ctx context.Context, budgetID id.BudgetID) (*models.Budget, error)
	ListBudgets(ctx context.Context, filter service.Filter) ([]*models.Budget, error)
	CreateExpense(ctx context.Context, params service.CreateExpenseParams) (*models.Expense, error)
	CreateRevenue(ctx context.Context, params service.CreateRevenueParams) (*models.Revenue, error)
	ListExpenses(ctx context.Context, budgetID id.BudgetID) ([]*models.Expense, error)
	ListRevenues(ctx context.Context, budgetID id.BudgetID) ([]*models.Revenue, error)
}

// Handler exposes budget and ledger management over HTTP.
type Handler struct {
	budgets Service
	logger  *slog.Logger
}

func New(budgets Service, logger *slog.Logger) *Handler {
	return &Handler{budgets: budgets, logger: logger}
}

// Register mounts the budget routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/budgets", h.handleCreate)
	r.Get("/budgets", h.handleList)
	r.Get("/budgets/{budgetID}", h.handleGet)
	r.Patch("/budgets/{budgetID}", h.handleUpdate)
	r.Delete("/budgets/{budgetID}", h.handleDelete)

	r.Post("/budgets/{budgetID}/expenses", h.handleCreateExpense)
	r.Get("/budgets/{budgetID}/expenses", h.handleListExpenses)
	r.Post("/budgets/{budgetID}/revenues", h.handleCreateRevenue)
	r.Get("/budgets/{budgetID}/revenues", h.handleListRevenues)
}

type createRequest struct {
	Module        string          `json:"module"`
	Year          int             `json:"year"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
	Description   string          `json:"description"`
}

type updateRequest struct {
	InitialAmount *decimal.Decimal `json:"initial_amount"`
	UsedAmount    *decimal.Decimal `json:"used_amount"`
	Description   *string          `json:"description"`
}

type expenseRequest struct {
	Label         string          `json:"label"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Category      string          `json:"category"`
	Justification string          `json:"justification"`
}

type revenueRequest struct {
	Source      string          `json:"source"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	budget, err := h.budgets.CreateBudget(ctx, service.CreateBudgetParams{
		Module:        req.Module,
		Year:          req.Year,
		InitialAmount: req.InitialAmount,
		Description:   req.Description,
	})
	if err != nil {
		h.logFailure(ctx, "create budget failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, budget)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	budgetID, err := id.ParseBudgetID(chi.URLParam(r, "budgetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	budget, err := h.budgets.UpdateBudget(ctx, budgetID, models.Patch{
		InitialAmount: req.InitialAmount,
		UsedAmount:    req.UsedAmount,
		Description:   req.Description,
	})
	if err != nil {
		h.logFailure(ctx, "update budget failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, budget)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	budgetID, err := id.ParseBudgetID(chi.URLParam(r, "budgetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.budgets.DeleteBudget(ctx, budgetID); err != nil {
		h.logFailure(ctx, "delete budget failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	budgetID, err := id.ParseBudgetID(chi.URLParam(r, "budgetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	budget, err := h.budgets.GetBudget(ctx, budgetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, budget)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter service.Filter
	if raw := r.URL.Query().Get("module"); raw != "" {
		filter.Module = &raw
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeValidation, "invalid year %q", raw))
			return
		}
		filter.Year = &year
	}

	budgets, err := h.budgets.ListBudgets(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if budgets == nil {
		budgets = []*models.Budget{}
	}

	httputil.WriteJSON(w, http.StatusOK, budgets)
}

func (h *Handler) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	budgetID, err := id.ParseBudgetID(chi.URLParam(r, "budgetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	expense, err := h.budgets.CreateExpense(ctx, service.CreateExpenseParams{
		BudgetID:      budgetID,
		Label:         req.Label,
		Amount:        req.Amount,
		Date:          req.Date,
		Category:      req.Category,
		Justification: req.Justification,
	})
	if err != nil {
		h.logFailure(ctx, "create expense failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, expense)
}

func (h *Handler) handleCreateRevenue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	budgetID, err := id.ParseBudgetID(chi.URLParam(r, "budgetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req revenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	revenue, err := h.budgets.CreateRevenue(ctx, service.CreateRevenueParams{
		BudgetID:    budgetID,
		Source:      req.Source,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		h.logFailure(ctx, "create revenue failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, revenue)
}

func (h *Handler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	budgetID, err := id.ParseBudgetID(chi.URLParam(r, "budgetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	expenses, err := h.budgets.ListExpenses(ctx, budgetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if expenses == nil {
		expenses = []*models.Expense{}
	}

	httputil.WriteJSON(w, http.StatusOK, expenses)
}

func (h *Handler) handleListRevenues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	budgetID, err := id.ParseBudgetID(chi.URLParam(r, "budgetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	revenues, err := h.budgets.ListRevenues(ctx, budgetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if revenues == nil {
		revenues = []*models.Revenue{}
	}

	httputil.WriteJSON(w, http.StatusOK, revenues)
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	if h.logger == nil {
		return
	}
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
