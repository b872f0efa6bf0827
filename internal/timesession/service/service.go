package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"caseworks/internal/directory"
	sessionmetrics "caseworks/internal/timesession/metrics"
	"caseworks/internal/timesession/models"
	id "caseworks/pkg/domain"
	dErrors "caseworks/pkg/domain-errors"
	"caseworks/pkg/platform/audit"
	"caseworks/pkg/platform/sentinel"
	"caseworks/pkg/requestcontext"
)

const defaultStaleAfter = 12 * time.Hour

// autoCloseNote marks sessions closed for the user by a later start rather
// than by an explicit end.
const autoCloseNote = "auto-closed: left open past the stale threshold"

// Service tracks caseworker time. A user holds at most one active session
// per beneficiary; a stale session left open past the configured age is
// auto-closed by the next start attempt instead of blocking it.
type Service struct {
	store          Store
	directory      directory.Directory
	staleAfter     time.Duration
	strictEnd      bool
	auditPublisher audit.Publisher
	metrics        *sessionmetrics.Metrics
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

func WithMetrics(m *sessionmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStaleAfter overrides the age at which an open session is treated as
// abandoned.
func WithStaleAfter(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.staleAfter = d
		}
	}
}

// WithStrictEnd disables the fallback that ends the caller's most recent
// active session when the supplied id matches nothing.
func WithStrictEnd(strict bool) Option {
	return func(s *Service) {
		s.strictEnd = strict
	}
}

func New(store Store, dir directory.Directory, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if dir == nil {
		return nil, fmt.Errorf("directory is required")
	}
	svc := &Service{
		store:      store,
		directory:  dir,
		staleAfter: defaultStaleAfter,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// StartParams carries the input for starting a session.
type StartParams struct {
	BeneficiaryID id.BeneficiaryID
	ActivityType  string
	Notes         string
}

// Start opens a session for the caller and the given beneficiary. An
// existing active session younger than the stale threshold is a conflict; a
// stale one is closed first and the start proceeds.
func (s *Service) Start(ctx context.Context, params StartParams) (*models.TimeSession, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	now := requestcontext.Now(ctx)

	exists, err := s.directory.BeneficiaryExists(ctx, params.BeneficiaryID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify beneficiary")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "beneficiary does not exist")
	}

	existing, err := s.store.FindActive(ctx, userID, params.BeneficiaryID)
	switch {
	case err == nil:
		if now.Sub(existing.StartTime) < s.staleAfter {
			return nil, dErrors.New(dErrors.CodeConflict, "an active session already exists for this beneficiary")
		}
		closed, closeErr := s.store.CloseIfActive(ctx, existing.ID, userID, now, autoCloseNote)
		if closeErr != nil && !errors.Is(closeErr, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(closeErr, dErrors.CodeInternal, "failed to close stale session")
		}
		if closed != nil {
			s.emit(ctx, audit.EventSessionAutoClosed, closed.ID.String(), fmt.Sprintf("open since %s", closed.StartTime.Format(time.RFC3339)))
			if s.metrics != nil {
				s.metrics.IncrementStaleSessionsClosed()
			}
		}
	case errors.Is(err, sentinel.ErrNotFound):
		// nothing open for this pair
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up active session")
	}

	session, err := models.NewTimeSession(id.TimeSessionID(uuid.New()), userID, params.BeneficiaryID, params.ActivityType, params.Notes, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, session); err != nil {
		if errors.Is(err, ErrActiveSessionExists) {
			// lost a race with a concurrent start for the same pair
			return nil, dErrors.New(dErrors.CodeConflict, "an active session already exists for this beneficiary")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	s.emit(ctx, audit.EventSessionStarted, session.ID.String(), fmt.Sprintf("beneficiary=%s activity=%s", session.BeneficiaryID, session.ActivityType))
	if s.metrics != nil {
		s.metrics.IncrementSessionsStarted()
	}
	return session, nil
}

// EndResult reports what End actually did. Closed is false when nothing was
// open to close; callers treat that as a successful no-op.
type EndResult struct {
	Closed  bool                `json:"closed"`
	Session *models.TimeSession `json:"session,omitempty"`
}

// End closes the caller's session, appending the optional closing notes. If
// the id matches no active session the caller owns, the caller's most recent
// active session is closed instead, unless strict mode is on. With nothing
// open at all, End is a no-op.
func (s *Service) End(ctx context.Context, sessionID id.TimeSessionID, notes string) (*EndResult, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	now := requestcontext.Now(ctx)

	closed, err := s.store.CloseIfActive(ctx, sessionID, userID, now, notes)
	if err == nil {
		s.emit(ctx, audit.EventSessionEnded, closed.ID.String(), durationDetail(closed))
		if s.metrics != nil {
			s.metrics.IncrementSessionsEnded()
		}
		return &EndResult{Closed: true, Session: closed}, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to end session")
	}
	if s.strictEnd {
		return nil, dErrors.New(dErrors.CodeNotFound, "no active session with this id")
	}

	latest, err := s.store.FindLatestActiveByUser(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return &EndResult{Closed: false}, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find active session")
	}

	closed, err = s.store.CloseIfActive(ctx, latest.ID, userID, now, notes)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// closed by a concurrent request between lookup and close
			return &EndResult{Closed: false}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to end session")
	}

	s.emit(ctx, audit.EventSessionEnded, closed.ID.String(), durationDetail(closed))
	if s.metrics != nil {
		s.metrics.IncrementSessionsEnded()
	}
	return &EndResult{Closed: true, Session: closed}, nil
}

// Get returns one session. Callers may only read their own sessions unless
// their role manages others' records.
func (s *Service) Get(ctx context.Context, sessionID id.TimeSessionID) (*models.TimeSession, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	return session, nil
}

// List returns sessions matching the filter, scoped to the caller's own
// sessions when no explicit user filter is given.
func (s *Service) List(ctx context.Context, filter Filter) ([]*models.TimeSession, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if filter.UserID == nil {
		filter.UserID = &userID
	}
	sessions, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
	}
	return sessions, nil
}

func durationDetail(session *models.TimeSession) string {
	if session.DurationMinutes == nil {
		return ""
	}
	return fmt.Sprintf("duration_minutes=%d", *session.DurationMinutes)
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
