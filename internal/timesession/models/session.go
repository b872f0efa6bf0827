package models

import (
	"math"
	"time"

	id "caseworks/pkg/domain"
	dErrors "caseworks/pkg/domain-errors"
)

// TimeSession records a caseworker's tracked work with one beneficiary. A
// user holds at most one active session per beneficiary at a time.
type TimeSession struct {
	ID              id.TimeSessionID `json:"id"`
	UserID          id.UserID        `json:"user_id"`
	BeneficiaryID   id.BeneficiaryID `json:"beneficiary_id"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         *time.Time       `json:"end_time,omitempty"`
	DurationMinutes *int             `json:"duration_minutes,omitempty"`
	IsActive        bool             `json:"is_active"`
	ActivityType    string           `json:"activity_type"`
	Notes           string           `json:"notes,omitempty"`
}

// NewTimeSession validates and constructs an active session starting now.
// Activity type and notes are optional and may be empty.
func NewTimeSession(sessionID id.TimeSessionID, userID id.UserID, beneficiaryID id.BeneficiaryID, activityType, notes string, now time.Time) (*TimeSession, error) {
	if now.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "start time is required")
	}
	return &TimeSession{
		ID:            sessionID,
		UserID:        userID,
		BeneficiaryID: beneficiaryID,
		StartTime:     now,
		IsActive:      true,
		ActivityType:  activityType,
		Notes:         notes,
	}, nil
}

// Close marks the session ended and derives its duration. Clock skew can put
// the end before the start; the duration floors at zero rather than going
// negative. A non-empty closing note is appended to any notes already on the
// session.
func (s *TimeSession) Close(end time.Time, note string) {
	minutes := int(math.Round(end.Sub(s.StartTime).Minutes()))
	if minutes < 0 {
		minutes = 0
	}
	s.EndTime = &end
	s.DurationMinutes = &minutes
	s.IsActive = false
	s.appendNote(note)
}

func (s *TimeSession) appendNote(note string) {
	switch {
	case note == "":
	case s.Notes == "":
		s.Notes = note
	default:
		s.Notes = s.Notes + "\n" + note
	}
}
