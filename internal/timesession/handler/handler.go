package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"caseworks/internal/timesession/models"
	"caseworks/internal/timesession/service"
	id "caseworks/pkg/domain"
	dErrors "caseworks/pkg/domain-errors"
	"caseworks/pkg/platform/httputil"
	"caseworks/pkg/requestcontext"
)

// Service defines the session operations the handler exposes.
type Service interface {
	Start(ctx context.Context, params service.StartParams) (*models.TimeSession, error)
	End(ctx context.Context, sessionID id.TimeSessionID, notes string) (*service.EndResult, error)
	Get(ctx context.Context, sessionID id.TimeSessionID) (*models.TimeSession, error)
	List(ctx context.Context, filter service.Filter) ([]*models.TimeSession, error)
}

// Handler exposes time tracking over HTTP.
type Handler struct {
	sessions Service
	logger   *slog.Logger
}

func New(sessions Service, logger *slog.Logger) *Handler {
	return &Handler{sessions: sessions, logger: logger}
}

// Register mounts the session routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sessions/start", h.handleStart)
	r.Post("/sessions/{sessionID}/end", h.handleEnd)
	r.Get("/sessions", h.handleList)
	r.Get("/sessions/{sessionID}", h.handleGet)
}

type startRequest struct {
	BeneficiaryID string `json:"beneficiary_id"`
	ActivityType  string `json:"activity_type"`
	Notes         string `json:"notes"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	beneficiaryID, err := id.ParseBeneficiaryID(req.BeneficiaryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.sessions.Start(ctx, service.StartParams{
		BeneficiaryID: beneficiaryID,
		ActivityType:  req.ActivityType,
		Notes:         req.Notes,
	})
	if err != nil {
		h.logFailure(ctx, "start session failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, session)
}

type endRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := id.ParseTimeSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// the body is optional; an absent one means no closing notes
	var req endRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil && !errors.Is(decodeErr, io.EOF) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.sessions.End(ctx, sessionID, req.Notes)
	if err != nil {
		h.logFailure(ctx, "end session failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := id.ParseTimeSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, session)
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
	if raw := r.URL.Query().Get("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}

	sessions, err := h.sessions.List(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*models.TimeSession{}
	}

	httputil.WriteJSON(w, http.StatusOK, sessions)
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
