package migration

import (
	"context"

	"gradesheet/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations. The DDL sticks to
// types both Postgres and SQLite accept.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createConversionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create conversions table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createConversionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS conversions (
			id UUID PRIMARY KEY,
			request_id VARCHAR(64) NOT NULL,
			mode VARCHAR(16) NOT NULL,
			file_count INTEGER NOT NULL DEFAULT 0,
			report_count INTEGER NOT NULL DEFAULT 0,
			student_count INTEGER NOT NULL DEFAULT 0,
			component_label TEXT NOT NULL DEFAULT '',
			final_label TEXT NOT NULL DEFAULT '',
			score_type TEXT NOT NULL DEFAULT '',
			output_name TEXT NOT NULL DEFAULT '',
			mean_score DOUBLE PRECISION,
			status VARCHAR(16) NOT NULL,
			error_message TEXT,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
