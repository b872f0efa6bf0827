package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"caseworks/internal/directory"
	"caseworks/internal/platform/authz"
	staymetrics "caseworks/internal/stay/metrics"
	"caseworks/internal/stay/models"
	id "caseworks/pkg/domain"
	dErrors "caseworks/pkg/domain-errors"
	"caseworks/pkg/platform/audit"
	"caseworks/pkg/platform/sentinel"
	"caseworks/pkg/requestcontext"
)

// Service allocates beds to residents while preserving the exclusivity
// invariants: one active stay per beneficiary, one active stay per bed.
type Service struct {
	store          Store
	directory      directory.Directory
	auditPublisher audit.Publisher
	metrics        *staymetrics.Metrics
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

func WithMetrics(m *staymetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, dir directory.Directory, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("stay store is required")
	}
	if dir == nil {
		return nil, fmt.Errorf("directory is required")
	}
	svc := &Service{store: store, directory: dir}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateParams carries the input for a new stay.
type CreateParams struct {
	BeneficiaryID id.BeneficiaryID
	Dormitory     string
	Bed           string
	CheckInDate   time.Time
	CheckOutDate  *time.Time
	Status        models.Status
}

// Create allocates a bed. Rejects with Conflict when the beneficiary already
// occupies a bed or the target bed is taken; both checks happen atomically
// with the insert inside the store.
func (s *Service) Create(ctx context.Context, params CreateParams) (*models.Stay, error) {
	callerID := requestcontext.UserID(ctx)
	if callerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if params.BeneficiaryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "beneficiary id is required")
	}

	exists, err := s.directory.BeneficiaryExists(ctx, params.BeneficiaryID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up beneficiary")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "beneficiary does not exist")
	}

	now := requestcontext.Now(ctx)
	stay, err := models.NewStay(id.StayID(uuid.New()), params.BeneficiaryID, params.Dormitory, params.Bed, params.CheckInDate, params.CheckOutDate, params.Status, callerID, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, stay); err != nil {
		derr := translateStoreErr(err, "failed to create stay")
		if s.metrics != nil && dErrors.HasCode(derr, dErrors.CodeConflict) {
			s.metrics.IncrementAllocationConflicts()
		}
		return nil, derr
	}

	s.emit(ctx, audit.EventStayCreated, stay.ID.String(), fmt.Sprintf("%s/%s", stay.Dormitory, stay.Bed))
	if s.metrics != nil {
		s.metrics.IncrementStaysCreated()
	}
	return stay, nil
}

// Update patches a stay. Only the creator or a caller with the manage-any
// capability may change it. Bed or status changes re-run the occupancy
// invariants atomically in the store.
func (s *Service) Update(ctx context.Context, stayID id.StayID, patch models.Patch) (*models.Stay, error) {
	stay, err := s.authorizedStay(ctx, stayID)
	if err != nil {
		return nil, err
	}

	updated := *stay
	if err := updated.Apply(patch, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, &updated); err != nil {
		return nil, translateStoreErr(err, "failed to update stay")
	}

	s.emit(ctx, audit.EventStayUpdated, updated.ID.String(), fmt.Sprintf("%s/%s status=%s", updated.Dormitory, updated.Bed, updated.Status))
	return &updated, nil
}

// Delete removes a stay permanently. Same ownership rule as Update.
func (s *Service) Delete(ctx context.Context, stayID id.StayID) error {
	stay, err := s.authorizedStay(ctx, stayID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, stayID); err != nil {
		return translateStoreErr(err, "failed to delete stay")
	}

	s.emit(ctx, audit.EventStayDeleted, stay.ID.String(), fmt.Sprintf("%s/%s", stay.Dormitory, stay.Bed))
	return nil
}

// Get returns one stay.
func (s *Service) Get(ctx context.Context, stayID id.StayID) (*models.Stay, error) {
	if requestcontext.UserID(ctx).IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	stay, err := s.store.FindByID(ctx, stayID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load stay")
	}
	return stay, nil
}

// List returns stays matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*models.Stay, error) {
	if requestcontext.UserID(ctx).IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	stays, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list stays")
	}
	return stays, nil
}

// authorizedStay loads the stay and enforces the owner-or-director rule.
func (s *Service) authorizedStay(ctx context.Context, stayID id.StayID) (*models.Stay, error) {
	callerID := requestcontext.UserID(ctx)
	if callerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	stay, err := s.store.FindByID(ctx, stayID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load stay")
	}

	if stay.CreatedBy != callerID && !authz.Allows(requestcontext.Role(ctx), authz.CapStayManageAny) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the creator or a director may modify this stay")
	}
	return stay, nil
}

func translateStoreErr(err error, internalMsg string) error {
	switch {
	case errors.Is(err, ErrBeneficiaryHasActiveStay):
		return dErrors.New(dErrors.CodeConflict, "beneficiary already has an active stay")
	case errors.Is(err, ErrBedOccupied):
		return dErrors.New(dErrors.CodeConflict, "bed is already occupied by an active stay")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "stay not found")
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
