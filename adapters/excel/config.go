package excel

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TemplateSource locates the report template and the layout it follows
type TemplateSource struct {
	Path   string
	Schema ReportSchema
}

// Open loads a fresh copy of the template. Every report gets its own
// workbook; the caller owns the returned file and must Close it.
func (t TemplateSource) Open() (*excelize.File, error) {
	path := strings.TrimSpace(t.Path)
	if path == "" {
		return nil, fmt.Errorf("template path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", path, err)
	}
	if _, err := SheetName(f, t.Schema); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// SheetName resolves the worksheet the schema targets
func SheetName(f *excelize.File, schema ReportSchema) (string, error) {
	if schema.Sheet == "" {
		name := f.GetSheetName(0)
		if name == "" {
			return "", fmt.Errorf("template has no worksheets")
		}
		return name, nil
	}
	if idx, err := f.GetSheetIndex(schema.Sheet); err != nil || idx < 0 {
		return "", fmt.Errorf("template has no worksheet %q", schema.Sheet)
	}
	return schema.Sheet, nil
}
