package ports

import (
	"context"

	"gradesheet/models"
)

// ConversionLogRepository persists a history of conversion requests
type ConversionLogRepository interface {
	// Record stores one conversion; ID and CreatedAt are filled when empty
	Record(ctx context.Context, record *models.ConversionRecord) error

	// ListRecent returns up to limit records, newest first
	ListRecent(ctx context.Context, limit int) ([]*models.ConversionRecord, error)
}
