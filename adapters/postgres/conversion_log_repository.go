package postgres

import (
	"context"
	"time"

	"gradesheet/models"
	"gradesheet/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const maxListLimit = 500

// ConversionLogRepositoryImpl implements ConversionLogRepository on sqlx.
// Queries are rebound for the driver, so the same code runs on sqlite.
type ConversionLogRepositoryImpl struct {
	db *sqlx.DB
}

// NewConversionLogRepository creates a conversion log backed by db
func NewConversionLogRepository(db *sqlx.DB) ports.ConversionLogRepository {
	return &ConversionLogRepositoryImpl{db: db}
}

// Record inserts one conversion record
func (r *ConversionLogRepositoryImpl) Record(ctx context.Context, record *models.ConversionRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if record.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		record.ID = id
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO conversions (
			id, request_id, mode, file_count, report_count, student_count,
			component_label, final_label, score_type, output_name,
			mean_score, status, error_message, duration_ms, created_at
		) VALUES (
			:id, :request_id, :mode, :file_count, :report_count, :student_count,
			:component_label, :final_label, :score_type, :output_name,
			:mean_score, :status, :error_message, :duration_ms, :created_at
		)
	`, record)
	return err
}

// ListRecent returns the newest conversions first
func (r *ConversionLogRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*models.ConversionRecord, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	records := []*models.ConversionRecord{}
	err := r.db.SelectContext(ctx, &records, r.db.Rebind(`
		SELECT id, request_id, mode, file_count, report_count, student_count,
		       component_label, final_label, score_type, output_name,
		       mean_score, status, error_message, duration_ms, created_at
		FROM conversions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), limit)
	return records, err
}

// NoopConversionLog discards records; used when no database is configured
type NoopConversionLog struct{}

// Record does nothing
func (NoopConversionLog) Record(context.Context, *models.ConversionRecord) error {
	return nil
}

// ListRecent always returns an empty list
func (NoopConversionLog) ListRecent(context.Context, int) ([]*models.ConversionRecord, error) {
	return []*models.ConversionRecord{}, nil
}
