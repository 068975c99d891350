package container

import (
	"context"
	"fmt"
	"log"
	"os"

	"gradesheet/adapters/excel"
	"gradesheet/adapters/postgres"
	"gradesheet/internal/api"
	"gradesheet/internal/config"
	"gradesheet/internal/errors"
	"gradesheet/internal/report"
	"gradesheet/internal/scratch"
	"gradesheet/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB      *sqlx.DB
	Storage *scratch.Storage

	// Reporting
	Template     excel.TemplateSource
	Reader       *excel.RosterReader
	Orchestrator *report.Orchestrator

	// Repositories (data access layer)
	Conversions ports.ConversionLogRepository
}

// New creates a new dependency injection container. The conversion log is
// a no-op until InitWithDatabase is called.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	schema, err := excel.LoadReportSchema(cfg.Report.SchemaPath)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to load report schema"))
	}
	if _, err := os.Stat(cfg.Report.TemplatePath); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("template %s is not readable: %v", cfg.Report.TemplatePath, err))
	}

	storage, err := scratch.NewStorage(cfg.Upload.ScratchDir)
	if err != nil {
		return nil, errors.StorageError("failed to prepare scratch directory", err)
	}

	c := &Container{
		Config:      cfg,
		Storage:     storage,
		Template:    excel.TemplateSource{Path: cfg.Report.TemplatePath, Schema: schema},
		Reader:      excel.NewRosterReader(cfg.Report.RosterSkipRows),
		Conversions: postgres.NoopConversionLog{},
	}
	c.Orchestrator = report.NewOrchestrator(c.Template, c.Reader, report.WithWorkers(cfg.Report.Workers))
	return c, nil
}

// InitWithDatabase switches the conversion log to db
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.DB = db
	c.Conversions = postgres.NewConversionLogRepository(db)
	log.Printf("Container initialized successfully with database connection")
	return nil
}

// Server builds the HTTP server
func (c *Container) Server() (*api.Server, error) {
	mode, err := report.ParseMode(c.Config.Report.Mode, report.ModePerFile)
	if err != nil {
		return nil, err
	}
	return api.NewServer(c.Orchestrator, c.Storage, c.Conversions, api.Options{
		MaxFiles:       c.Config.Upload.MaxFiles,
		MaxBytes:       c.Config.Upload.MaxBytes(),
		DefaultMode:    mode,
		MaxConcurrent:  int64(c.Config.Report.MaxConcurrent),
		RequestTimeout: c.Config.Server.RequestTimeout,
		RateLimit:      c.Config.Server.RateLimit,
		RateWindow:     c.Config.Server.RateWindow,
		StaticDir:      c.Config.Server.StaticDir,
	}), nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
