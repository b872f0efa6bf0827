package service

import (
	"context"
	"errors"
	"time"

	"caseworks/internal/timesession/models"
	id "caseworks/pkg/domain"
)

// ErrActiveSessionExists means the (user, beneficiary) pair already has an
// active session. The store detects this atomically with the insert, so two
// concurrent starts can never both succeed.
var ErrActiveSessionExists = errors.New("active session already exists for user and beneficiary")

// Filter narrows session listings. Nil fields match everything.
type Filter struct {
	UserID        *id.UserID
	BeneficiaryID *id.BeneficiaryID
	Active        *bool
}

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// Store persists time sessions.
//
// CloseIfActive flips one active session owned by userID to closed, deriving
// the duration from end and appending a non-empty note to the session's
// notes, as a single atomic write; it reports sentinel.ErrNotFound when no
// such active session exists.
type Store interface {
	Create(ctx context.Context, session *models.TimeSession) error
	FindByID(ctx context.Context, sessionID id.TimeSessionID) (*models.TimeSession, error)
	FindActive(ctx context.Context, userID id.UserID, beneficiaryID id.BeneficiaryID) (*models.TimeSession, error)
	FindLatestActiveByUser(ctx context.Context, userID id.UserID) (*models.TimeSession, error)
	CloseIfActive(ctx context.Context, sessionID id.TimeSessionID, userID id.UserID, end time.Time, note string) (*models.TimeSession, error)
	List(ctx context.Context, filter Filter) ([]*models.TimeSession, error)
}
