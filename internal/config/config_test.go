package config

import (
	"testing"
	"time"

	"gradesheet/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "PORT", "TEMPLATE_PATH", "REPORT_MODE", "REPORT_WORKERS",
		"ROSTER_SKIP_ROWS", "SCRATCH_DIR", "MAX_UPLOAD_FILES", "MAX_UPLOAD_MB", "LOG_LEVEL", "RATE_LIMIT", "RATE_WINDOW"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "template.xlsx", cfg.Report.TemplatePath)
	assert.Equal(t, "per-file", cfg.Report.Mode)
	assert.Equal(t, 4, cfg.Report.Workers)
	assert.Equal(t, 0, cfg.Report.RosterSkipRows)
	assert.Equal(t, "uploads", cfg.Upload.ScratchDir)
	assert.Equal(t, 10, cfg.Upload.MaxFiles)
	assert.Equal(t, int64(32<<20), cfg.Upload.MaxBytes())
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 60, cfg.Server.RateLimit)
	assert.Equal(t, time.Minute, cfg.Server.RateWindow)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/grades")
	t.Setenv("REPORT_MODE", "MERGE")
	t.Setenv("REPORT_WORKERS", "2")
	t.Setenv("ROSTER_SKIP_ROWS", "1")
	t.Setenv("MAX_UPLOAD_FILES", "3")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("PPROF_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "merge", cfg.Report.Mode)
	assert.Equal(t, 2, cfg.Report.Workers)
	assert.Equal(t, 1, cfg.Report.RosterSkipRows)
	assert.Equal(t, 3, cfg.Upload.MaxFiles)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Profiling.Enabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string][2]string{
		"mode":      {"REPORT_MODE", "zip"},
		"workers":   {"REPORT_WORKERS", "0"},
		"skip rows": {"ROSTER_SKIP_ROWS", "-1"},
		"max files": {"MAX_UPLOAD_FILES", "0"},
		"rate":      {"RATE_LIMIT", "-1"},
		"window":    {"RATE_WINDOW", "-5s"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestInvalidNumbersFallBackToDefaults(t *testing.T) {
	t.Setenv("REPORT_WORKERS", "many")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Report.Workers)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}
