package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"caseworks/internal/stay/models"
	"caseworks/internal/stay/service"
	id "caseworks/pkg/domain"
	"caseworks/pkg/platform/sentinel"
)

// Partial unique indexes over the ACTIVE subset of rows carry the occupancy
// invariants; writes never need a separate read-then-check.
const (
	constraintActivePerBeneficiary = "stays_one_active_per_beneficiary"
	constraintActivePerBed         = "stays_one_active_per_bed"
)

// PostgresStore persists stays. Pure I/O; the exclusivity invariants live in
// the schema's partial unique indexes so concurrent writers cannot race past
// an application-level check.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, stay *models.Stay) error {
	query := `
		INSERT INTO stays (id, beneficiary_id, dormitory, bed, check_in_date, check_out_date, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(stay.ID),
		uuid.UUID(stay.BeneficiaryID),
		stay.Dormitory,
		stay.Bed,
		stay.CheckInDate,
		stay.CheckOutDate,
		string(stay.Status),
		uuid.UUID(stay.CreatedBy),
		stay.CreatedAt,
		stay.UpdatedAt,
	)
	if err != nil {
		if occErr := occupancyViolation(err); occErr != nil {
			return occErr
		}
		return fmt.Errorf("create stay: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, stayID id.StayID) (*models.Stay, error) {
	query := `
		SELECT id, beneficiary_id, dormitory, bed, check_in_date, check_out_date, status, created_by, created_at, updated_at
		FROM stays
		WHERE id = $1
	`
	stay, err := scanStay(s.db.QueryRowContext(ctx, query, uuid.UUID(stayID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find stay: %w", err)
	}
	return stay, nil
}

func (s *PostgresStore) Update(ctx context.Context, stay *models.Stay) error {
	query := `
		UPDATE stays
		SET beneficiary_id = $2, dormitory = $3, bed = $4, check_in_date = $5,
		    check_out_date = $6, status = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(stay.ID),
		uuid.UUID(stay.BeneficiaryID),
		stay.Dormitory,
		stay.Bed,
		stay.CheckInDate,
		stay.CheckOutDate,
		string(stay.Status),
		stay.UpdatedAt,
	)
	if err != nil {
		if occErr := occupancyViolation(err); occErr != nil {
			return occErr
		}
		return fmt.Errorf("update stay: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update stay rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, stayID id.StayID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM stays WHERE id = $1`, uuid.UUID(stayID))
	if err != nil {
		return fmt.Errorf("delete stay: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete stay rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter service.Filter) ([]*models.Stay, error) {
	query := `
		SELECT id, beneficiary_id, dormitory, bed, check_in_date, check_out_date, status, created_by, created_at, updated_at
		FROM stays
		WHERE ($1::uuid IS NULL OR beneficiary_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
	`
	var beneficiaryArg any
	if filter.BeneficiaryID != nil {
		beneficiaryArg = uuid.UUID(*filter.BeneficiaryID)
	}
	var statusArg any
	if filter.Status != nil {
		statusArg = string(*filter.Status)
	}

	rows, err := s.db.QueryContext(ctx, query, beneficiaryArg, statusArg)
	if err != nil {
		return nil, fmt.Errorf("list stays: %w", err)
	}
	defer rows.Close()

	var stays []*models.Stay
	for rows.Next() {
		stay, err := scanStay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stay: %w", err)
		}
		stays = append(stays, stay)
	}
	return stays, rows.Err()
}

// occupancyViolation maps a partial-unique-index violation to the store-level
// fact the service understands. Returns nil for unrelated errors.
func occupancyViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch pqErr.Constraint {
	case constraintActivePerBeneficiary:
		return service.ErrBeneficiaryHasActiveStay
	case constraintActivePerBed:
		return service.ErrBedOccupied
	}
	return nil
}

type stayRow interface {
	Scan(dest ...any) error
}

func scanStay(row stayRow) (*models.Stay, error) {
	var stay models.Stay
	var stayID, beneficiaryID, createdBy uuid.UUID
	var checkOut sql.NullTime
	var status string
	if err := row.Scan(&stayID, &beneficiaryID, &stay.Dormitory, &stay.Bed, &stay.CheckInDate, &checkOut, &status, &createdBy, &stay.CreatedAt, &stay.UpdatedAt); err != nil {
		return nil, err
	}
	stay.ID = id.StayID(stayID)
	stay.BeneficiaryID = id.BeneficiaryID(beneficiaryID)
	stay.CreatedBy = id.UserID(createdBy)
	stay.Status = models.Status(status)
	if checkOut.Valid {
		stay.CheckOutDate = &checkOut.Time
	}
	return &stay, nil
}
