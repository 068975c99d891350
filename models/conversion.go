package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Conversion statuses
const (
	ConversionSucceeded = "succeeded"
	ConversionFailed    = "failed"
)

// ConversionRecord is one logged conversion request
type ConversionRecord struct {
	ID             uuid.UUID `json:"id" db:"id"`
	RequestID      string    `json:"request_id" db:"request_id"`
	Mode           string    `json:"mode" db:"mode"` // 'merge' or 'per-file'
	FileCount      int       `json:"file_count" db:"file_count"`
	ReportCount    int       `json:"report_count" db:"report_count"`
	StudentCount   int       `json:"student_count" db:"student_count"`
	ComponentLabel string    `json:"component_label" db:"component_label"`
	FinalLabel     string    `json:"final_label" db:"final_label"`
	ScoreType      string    `json:"score_type" db:"score_type"`
	OutputName     string    `json:"output_name" db:"output_name"`
	MeanScore      *float64  `json:"mean_score,omitempty" db:"mean_score"`
	Status         string    `json:"status" db:"status"`
	ErrorMessage   *string   `json:"error_message,omitempty" db:"error_message"`
	DurationMs     int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Validate checks the fields the conversion log relies on
func (r *ConversionRecord) Validate() error {
	if r.RequestID == "" {
		return fmt.Errorf("request ID is required")
	}
	switch r.Status {
	case ConversionSucceeded, ConversionFailed:
	default:
		return fmt.Errorf("invalid status %q", r.Status)
	}
	if r.FileCount < 0 || r.ReportCount < 0 || r.StudentCount < 0 {
		return fmt.Errorf("counts cannot be negative")
	}
	if r.Status == ConversionFailed && r.ErrorMessage == nil {
		return fmt.Errorf("failed conversion requires an error message")
	}
	return nil
}
