package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultReportSchemaIsValid(t *testing.T) {
	schema := DefaultReportSchema()
	require.NoError(t, schema.Validate())
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F", "G", "H"}, schema.BorderColumns())
}

func TestLoadReportSchemaOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sheet: Grades
start_row: 20
columns:
  computed_score: I
  border_to: I
cells:
  student_count_banner: A22
student_count_suffix: " students"
`), 0o644))

	schema, err := LoadReportSchema(path)
	require.NoError(t, err)

	assert.Equal(t, "Grades", schema.Sheet)
	assert.Equal(t, 20, schema.StartRow)
	assert.Equal(t, "I", schema.Columns.ComputedScore)
	assert.Equal(t, "F", schema.Columns.ComponentScore)
	assert.Equal(t, "A22", schema.Cells.StudentCountBanner)
	assert.Equal(t, "G7", schema.Cells.ComponentWeight)
	assert.Equal(t, " students", schema.StudentCountSuffix)
	assert.Equal(t, "SIS User ID", schema.Source.StudentID)
}

func TestLoadReportSchemaEmptyPath(t *testing.T) {
	schema, err := LoadReportSchema("")
	require.NoError(t, err)
	assert.Equal(t, DefaultReportSchema(), schema)
}

func TestLoadReportSchemaRejectsBadLayout(t *testing.T) {
	tests := map[string]string{
		"start row":   "start_row: 0\n",
		"column":      "columns:\n  ordinal: \"1A\"\n",
		"cell":        "cells:\n  class_code: \"C\"\n",
		"border span": "columns:\n  border_from: H\n  border_to: A\n",
		"source":      "source:\n  section: \"\"\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "schema.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			_, err := LoadReportSchema(path)
			assert.Error(t, err)
		})
	}
}

func TestNewTemplateWorkbookCustomSheet(t *testing.T) {
	schema := DefaultReportSchema()
	schema.Sheet = "Grades"

	f, err := NewTemplateWorkbook(schema)
	require.NoError(t, err)
	defer f.Close()

	name, err := SheetName(f, schema)
	require.NoError(t, err)
	assert.Equal(t, "Grades", name)

	weight, err := f.GetCellValue("Grades", "G7")
	require.NoError(t, err)
	assert.Equal(t, "0.4", weight)
}

func TestTemplateSourceOpen(t *testing.T) {
	f, err := NewTemplateWorkbook(DefaultReportSchema())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	src := TemplateSource{Path: path, Schema: DefaultReportSchema()}
	opened, err := src.Open()
	require.NoError(t, err)
	defer opened.Close()

	banner, err := opened.GetCellValue("Sheet1", "A13")
	require.NoError(t, err)
	assert.Equal(t, "Tổng số: ", banner)

	_, err = TemplateSource{Path: filepath.Join(t.TempDir(), "missing.xlsx"), Schema: DefaultReportSchema()}.Open()
	assert.Error(t, err)

	_, err = TemplateSource{Schema: DefaultReportSchema()}.Open()
	assert.Error(t, err)
}
