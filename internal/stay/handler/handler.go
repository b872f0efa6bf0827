package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"caseworks/internal/stay/models"
	"caseworks/internal/stay/service"
	id "caseworks/pkg/domain"
	dErrors "caseworks/pkg/domain-errors"
	"caseworks/pkg/platform/httputil"
	"caseworks/pkg/requestcontext"
)

// Service defines the stay operations the handler exposes.
type Service interface {
	Create(ctx context.Context, params service.CreateParams) (*models.Stay, error)
	Update(ctx context.Context, stayID id.StayID, patch models.Patch) (*models.Stay, error)
	Delete(ctx context.Context, stayID id.StayID) error
	Get(ctx context.Context, stayID id.StayID) (*models.Stay, error)
	List(ctx context.Context, filter service.Filter) ([]*models.Stay, error)
}

// Handler exposes stay allocation over HTTP.
type Handler struct {
	stays  Service
	logger *slog.Logger
}

func New(stays Service, logger *slog.Logger) *Handler {
	return &Handler{stays: stays, logger: logger}
}

// Register mounts the stay routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/stays", h.handleCreate)
	r.Get("/stays", h.handleList)
	r.Get("/stays/{stayID}", h.handleGet)
	r.Patch("/stays/{stayID}", h.handleUpdate)
	r.Delete("/stays/{stayID}", h.handleDelete)
}

type createRequest struct {
	BeneficiaryID string     `json:"beneficiary_id"`
	Dormitory     string     `json:"dormitory"`
	Bed           string     `json:"bed"`
	CheckInDate   time.Time  `json:"check_in_date"`
	CheckOutDate  *time.Time `json:"check_out_date"`
	Status        string     `json:"status"`
}

type updateRequest struct {
	Dormitory    *string    `json:"dormitory"`
	Bed          *string    `json:"bed"`
	CheckInDate  *time.Time `json:"check_in_date"`
	CheckOutDate *time.Time `json:"check_out_date"`
	Status       *string    `json:"status"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	beneficiaryID, err := id.ParseBeneficiaryID(req.BeneficiaryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stay, err := h.stays.Create(ctx, service.CreateParams{
		BeneficiaryID: beneficiaryID,
		Dormitory:     req.Dormitory,
		Bed:           req.Bed,
		CheckInDate:   req.CheckInDate,
		CheckOutDate:  req.CheckOutDate,
		Status:        models.Status(req.Status),
	})
	if err != nil {
		h.logFailure(ctx, "create stay failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, stay)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stayID, err := id.ParseStayID(chi.URLParam(r, "stayID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	patch := models.Patch{
		Dormitory:    req.Dormitory,
		Bed:          req.Bed,
		CheckInDate:  req.CheckInDate,
		CheckOutDate: req.CheckOutDate,
	}
	if req.Status != nil {
		status := models.Status(*req.Status)
		patch.Status = &status
	}

	stay, err := h.stays.Update(ctx, stayID, patch)
	if err != nil {
		h.logFailure(ctx, "update stay failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stay)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stayID, err := id.ParseStayID(chi.URLParam(r, "stayID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.stays.Delete(ctx, stayID); err != nil {
		h.logFailure(ctx, "delete stay failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stayID, err := id.ParseStayID(chi.URLParam(r, "stayID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stay, err := h.stays.Get(ctx, stayID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stay)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter service.Filter
	if raw := r.URL.Query().Get("beneficiary_id"); raw != "" {
		beneficiaryID, err := id.ParseBeneficiaryID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.BeneficiaryID = &beneficiaryID
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.Status(raw)
		if !status.IsValid() {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeValidation, "unknown stay status %q", raw))
			return
		}
		filter.Status = &status
	}

	stays, err := h.stays.List(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if stays == nil {
		stays = []*models.Stay{}
	}

	httputil.WriteJSON(w, http.StatusOK, stays)
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
