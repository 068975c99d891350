package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gradesheet/adapters/excel"
	"gradesheet/adapters/postgres"
	"gradesheet/internal/config"
	"gradesheet/internal/errors"
	"gradesheet/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	wb, err := excel.NewTemplateWorkbook(excel.DefaultReportSchema())
	require.NoError(t, err)
	templatePath := filepath.Join(dir, "template.xlsx")
	require.NoError(t, wb.SaveAs(templatePath))
	require.NoError(t, wb.Close())

	return &config.Config{
		Report: config.ReportConfig{
			TemplatePath:  templatePath,
			Mode:          "merge",
			Workers:       2,
			MaxConcurrent: 2,
		},
		Upload: config.UploadConfig{
			ScratchDir: filepath.Join(dir, "uploads"),
			MaxFiles:   10,
			MaxMB:      1,
		},
	}
}

func TestNewBuildsDependencies(t *testing.T) {
	cfg := testConfig(t)

	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.DirExists(t, cfg.Upload.ScratchDir)
	assert.Equal(t, cfg.Report.TemplatePath, c.Template.Path)
	assert.Equal(t, excel.DefaultReportSchema(), c.Template.Schema)
	assert.IsType(t, postgres.NoopConversionLog{}, c.Conversions)

	srv, err := c.Server()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRejectsMissingTemplate(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.TemplatePath = filepath.Join(t.TempDir(), "missing.xlsx")

	_, err := New(cfg)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestNewRejectsBadSchema(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.SchemaPath = filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(cfg.Report.SchemaPath, []byte("start_row: -3\n"), 0o644))

	_, err := New(cfg)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestInitWithDatabase(t *testing.T) {
	c, err := New(testConfig(t))
	require.NoError(t, err)
	require.Error(t, c.InitWithDatabase(nil))

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, migration.NewRunner().Run(context.Background(), db))

	require.NoError(t, c.InitWithDatabase(db))
	assert.NotNil(t, c.DB)
	records, err := c.Conversions.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
	require.NoError(t, c.Shutdown(context.Background()))
}
