package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"caseworks/internal/timesession/models"
	"caseworks/internal/timesession/service"
	id "caseworks/pkg/domain"
	"caseworks/pkg/platform/sentinel"
)

// A partial unique index over active rows carries the one-session-per-pair
// invariant.
const constraintOneActivePerPair = "time_sessions_one_active_per_pair"

// PostgresStore persists time sessions. Closing is a single conditional
// UPDATE that derives the duration in SQL, so two concurrent closes of the
// same session cannot both report success.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, session *models.TimeSession) error {
	query := `
		INSERT INTO time_sessions (id, user_id, beneficiary_id, start_time, end_time, duration_minutes, is_active, activity_type, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	var duration any
	if session.DurationMinutes != nil {
		duration = *session.DurationMinutes
	}
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(session.ID),
		uuid.UUID(session.UserID),
		uuid.UUID(session.BeneficiaryID),
		session.StartTime,
		session.EndTime,
		duration,
		session.IsActive,
		session.ActivityType,
		session.Notes,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == constraintOneActivePerPair {
			return service.ErrActiveSessionExists
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, sessionID id.TimeSessionID) (*models.TimeSession, error) {
	query := selectColumns + ` WHERE id = $1`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, uuid.UUID(sessionID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return session, nil
}

func (s *PostgresStore) FindActive(ctx context.Context, userID id.UserID, beneficiaryID id.BeneficiaryID) (*models.TimeSession, error) {
	query := selectColumns + ` WHERE user_id = $1 AND beneficiary_id = $2 AND is_active`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, uuid.UUID(userID), uuid.UUID(beneficiaryID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return session, nil
}

func (s *PostgresStore) FindLatestActiveByUser(ctx context.Context, userID id.UserID) (*models.TimeSession, error) {
	query := selectColumns + ` WHERE user_id = $1 AND is_active ORDER BY start_time DESC LIMIT 1`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, uuid.UUID(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find latest active session: %w", err)
	}
	return session, nil
}

func (s *PostgresStore) CloseIfActive(ctx context.Context, sessionID id.TimeSessionID, userID id.UserID, end time.Time, note string) (*models.TimeSession, error) {
	query := `
		UPDATE time_sessions
		SET end_time = $3,
		    duration_minutes = GREATEST(0, ROUND(EXTRACT(EPOCH FROM ($3 - start_time)) / 60))::int,
		    is_active = FALSE,
		    notes = CASE
		        WHEN $4 = '' THEN notes
		        WHEN notes = '' THEN $4
		        ELSE notes || E'\n' || $4
		    END
		WHERE id = $1 AND user_id = $2 AND is_active
		RETURNING id, user_id, beneficiary_id, start_time, end_time, duration_minutes, is_active, activity_type, notes
	`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, uuid.UUID(sessionID), uuid.UUID(userID), end, note))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("close session: %w", err)
	}
	return session, nil
}

func (s *PostgresStore) List(ctx context.Context, filter service.Filter) ([]*models.TimeSession, error) {
	query := selectColumns + `
		WHERE ($1::uuid IS NULL OR user_id = $1)
		  AND ($2::uuid IS NULL OR beneficiary_id = $2)
		  AND ($3::boolean IS NULL OR is_active = $3)
		ORDER BY start_time DESC
	`
	var userArg any
	if filter.UserID != nil {
		userArg = uuid.UUID(*filter.UserID)
	}
	var beneficiaryArg any
	if filter.BeneficiaryID != nil {
		beneficiaryArg = uuid.UUID(*filter.BeneficiaryID)
	}
	var activeArg any
	if filter.Active != nil {
		activeArg = *filter.Active
	}

	rows, err := s.db.QueryContext(ctx, query, userArg, beneficiaryArg, activeArg)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.TimeSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

const selectColumns = `
	SELECT id, user_id, beneficiary_id, start_time, end_time, duration_minutes, is_active, activity_type, notes
	FROM time_sessions`

type sessionRow interface {
	Scan(dest ...any) error
}

func scanSession(row sessionRow) (*models.TimeSession, error) {
	var session models.TimeSession
	var sessionID, userID, beneficiaryID uuid.UUID
	var endTime sql.NullTime
	var duration sql.NullInt64
	if err := row.Scan(&sessionID, &userID, &beneficiaryID, &session.StartTime, &endTime, &duration, &session.IsActive, &session.ActivityType, &session.Notes); err != nil {
		return nil, err
	}
	session.ID = id.TimeSessionID(sessionID)
	session.UserID = id.UserID(userID)
	session.BeneficiaryID = id.BeneficiaryID(beneficiaryID)
	if endTime.Valid {
		session.EndTime = &endTime.Time
	}
	if duration.Valid {
		minutes := int(duration.Int64)
		session.DurationMinutes = &minutes
	}
	return &session, nil
}
