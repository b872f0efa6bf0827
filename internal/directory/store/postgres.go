package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "caseworks/pkg/domain"
)

// PostgresDirectory reads the beneficiaries table maintained by the
// surrounding platform. Read-only from this core's point of view.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) BeneficiaryExists(ctx context.Context, beneficiaryID id.BeneficiaryID) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM beneficiaries WHERE id = $1)`,
		uuid.UUID(beneficiaryID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("beneficiary exists: %w", err)
	}
	return exists, nil
}
