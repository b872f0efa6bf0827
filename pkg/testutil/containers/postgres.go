//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors the production migrations. The partial unique indexes and
// the check constraint are what the stores rely on for invariant enforcement,
// so integration tests must run against the same shape.
const schema = `
CREATE TABLE IF NOT EXISTS beneficiaries (
	id UUID PRIMARY KEY,
	full_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS stays (
	id UUID PRIMARY KEY,
	beneficiary_id UUID NOT NULL REFERENCES beneficiaries (id),
	dormitory TEXT NOT NULL,
	bed TEXT NOT NULL,
	check_in_date TIMESTAMPTZ NOT NULL,
	check_out_date TIMESTAMPTZ,
	status TEXT NOT NULL,
	created_by UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS stays_one_active_per_beneficiary
	ON stays (beneficiary_id) WHERE status = 'ACTIVE';
CREATE UNIQUE INDEX IF NOT EXISTS stays_one_active_per_bed
	ON stays (dormitory, bed) WHERE status = 'ACTIVE';

CREATE TABLE IF NOT EXISTS budgets (
	id UUID PRIMARY KEY,
	module TEXT NOT NULL,
	year INT NOT NULL,
	initial_amount NUMERIC(14,2) NOT NULL,
	used_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	CONSTRAINT budgets_module_year_key UNIQUE (module, year),
	CONSTRAINT budgets_used_within_ceiling CHECK (used_amount <= initial_amount)
);

CREATE TABLE IF NOT EXISTS expenses (
	id UUID PRIMARY KEY,
	budget_id UUID NOT NULL REFERENCES budgets (id) ON DELETE RESTRICT,
	label TEXT NOT NULL,
	amount NUMERIC(14,2) NOT NULL,
	date TIMESTAMPTZ NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	justification TEXT NOT NULL DEFAULT '',
	created_by UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS revenues (
	id UUID PRIMARY KEY,
	budget_id UUID NOT NULL REFERENCES budgets (id) ON DELETE RESTRICT,
	source TEXT NOT NULL,
	amount NUMERIC(14,2) NOT NULL,
	date TIMESTAMPTZ NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_by UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS time_sessions (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	beneficiary_id UUID NOT NULL REFERENCES beneficiaries (id),
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ,
	duration_minutes INT,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	activity_type TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS time_sessions_one_active_per_pair
	ON time_sessions (user_id, beneficiary_id) WHERE is_active;

CREATE TABLE IF NOT EXISTS audit_events (
	id BIGSERIAL PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL,
	actor_id UUID NOT NULL,
	action TEXT NOT NULL,
	subject TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT ''
);
`

// PostgresContainer wraps a testcontainers Postgres instance with the
// project schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

var (
	pgOnce      sync.Once
	pgInstance  *PostgresContainer
	pgSetupFail error
)

// GetPostgres returns a shared Postgres container, starting it on first use.
// Suites share one instance and isolate themselves with TruncateTables.
func GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	pgOnce.Do(func() {
		pgInstance, pgSetupFail = startPostgres()
	})
	if pgSetupFail != nil {
		t.Fatalf("failed to start postgres container: %v", pgSetupFail)
	}
	return pgInstance
}

func startPostgres() (*PostgresContainer, error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("caseworks_test"),
		tcpostgres.WithUsername("caseworks"),
		tcpostgres.WithPassword("caseworks"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("run postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("connection string: %w", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, DB: db}, nil
}

// TruncateTables clears the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", ")))
	return err
}

// SeedBeneficiary inserts a beneficiary row so FK-dependent fixtures can be
// created.
func (p *PostgresContainer) SeedBeneficiary(ctx context.Context, beneficiaryID, fullName string) error {
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO beneficiaries (id, full_name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		beneficiaryID, fullName,
	)
	return err
}
