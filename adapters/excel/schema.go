package excel

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// ReportSchema maps the logical fields of a grade report onto template
// coordinates. Everything the populator writes or reads is addressed through it.
type ReportSchema struct {
	// Sheet is the worksheet to populate; empty means the first sheet.
	Sheet    string `yaml:"sheet"`
	StartRow int    `yaml:"start_row"`

	Columns SchemaColumns `yaml:"columns"`
	Cells   SchemaCells   `yaml:"cells"`
	Source  SourceHeaders `yaml:"source"`

	StudentCountSuffix string `yaml:"student_count_suffix"`
}

// SchemaColumns are the per-student columns, by letter
type SchemaColumns struct {
	Ordinal        string `yaml:"ordinal"`
	StudentID      string `yaml:"student_id"`
	StudentName    string `yaml:"student_name"`
	ComponentScore string `yaml:"component_score"`
	FinalScore     string `yaml:"final_score"`
	ComputedScore  string `yaml:"computed_score"`
	BorderFrom     string `yaml:"border_from"`
	BorderTo       string `yaml:"border_to"`
}

// SchemaCells are the fixed metadata, banner and weight cells
type SchemaCells struct {
	ClassCode          string `yaml:"class_code"`
	ClassName          string `yaml:"class_name"`
	StudentCountBanner string `yaml:"student_count_banner"`
	ScoreTypeBanner    string `yaml:"score_type_banner"`
	ComponentWeight    string `yaml:"component_weight"`
	FinalWeight        string `yaml:"final_weight"`
}

// SourceHeaders are the roster headers read without fuzzy resolution
type SourceHeaders struct {
	StudentID   string `yaml:"student_id"`
	StudentName string `yaml:"student_name"`
	Section     string `yaml:"section"`
}

// DefaultReportSchema returns the layout of the grading report template
func DefaultReportSchema() ReportSchema {
	return ReportSchema{
		StartRow: 12,
		Columns: SchemaColumns{
			Ordinal:        "A",
			StudentID:      "B",
			StudentName:    "C",
			ComponentScore: "F",
			FinalScore:     "G",
			ComputedScore:  "H",
			BorderFrom:     "A",
			BorderTo:       "H",
		},
		Cells: SchemaCells{
			ClassCode:          "C8",
			ClassName:          "C9",
			StudentCountBanner: "A13",
			ScoreTypeBanner:    "A5",
			ComponentWeight:    "G7",
			FinalWeight:        "G8",
		},
		Source: SourceHeaders{
			StudentID:   "SIS User ID",
			StudentName: "Student",
			Section:     "Section",
		},
		StudentCountSuffix: " sinh viên",
	}
}

// LoadReportSchema reads a YAML override on top of the defaults. An empty
// path returns the defaults.
func LoadReportSchema(path string) (ReportSchema, error) {
	schema := DefaultReportSchema()
	if strings.TrimSpace(path) == "" {
		return schema, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema, fmt.Errorf("failed to read report schema: %w", err)
	}
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return schema, fmt.Errorf("failed to parse report schema %s: %w", path, err)
	}
	if err := schema.Validate(); err != nil {
		return schema, err
	}
	return schema, nil
}

// Validate checks every column letter and cell reference
func (s ReportSchema) Validate() error {
	if s.StartRow < 1 {
		return fmt.Errorf("report schema: start_row must be >= 1, got %d", s.StartRow)
	}
	columns := map[string]string{
		"columns.ordinal":         s.Columns.Ordinal,
		"columns.student_id":      s.Columns.StudentID,
		"columns.student_name":    s.Columns.StudentName,
		"columns.component_score": s.Columns.ComponentScore,
		"columns.final_score":     s.Columns.FinalScore,
		"columns.computed_score":  s.Columns.ComputedScore,
		"columns.border_from":     s.Columns.BorderFrom,
		"columns.border_to":       s.Columns.BorderTo,
	}
	for field, col := range columns {
		if _, err := excelize.ColumnNameToNumber(col); err != nil {
			return fmt.Errorf("report schema: %s: %w", field, err)
		}
	}
	from, _ := excelize.ColumnNameToNumber(s.Columns.BorderFrom)
	to, _ := excelize.ColumnNameToNumber(s.Columns.BorderTo)
	if from > to {
		return fmt.Errorf("report schema: border_from %s is after border_to %s", s.Columns.BorderFrom, s.Columns.BorderTo)
	}

	cells := map[string]string{
		"cells.class_code":           s.Cells.ClassCode,
		"cells.class_name":           s.Cells.ClassName,
		"cells.student_count_banner": s.Cells.StudentCountBanner,
		"cells.score_type_banner":    s.Cells.ScoreTypeBanner,
		"cells.component_weight":     s.Cells.ComponentWeight,
		"cells.final_weight":         s.Cells.FinalWeight,
	}
	for field, cell := range cells {
		if _, _, err := excelize.CellNameToCoordinates(cell); err != nil {
			return fmt.Errorf("report schema: %s: %w", field, err)
		}
	}
	if s.Source.StudentID == "" || s.Source.StudentName == "" || s.Source.Section == "" {
		return fmt.Errorf("report schema: source headers must not be empty")
	}
	return nil
}

// Cell joins a column letter and row number
func Cell(column string, row int) string {
	return fmt.Sprintf("%s%d", column, row)
}

// BorderColumns lists every column letter between BorderFrom and BorderTo
func (s ReportSchema) BorderColumns() []string {
	from, err := excelize.ColumnNameToNumber(s.Columns.BorderFrom)
	if err != nil {
		return nil
	}
	to, err := excelize.ColumnNameToNumber(s.Columns.BorderTo)
	if err != nil {
		return nil
	}
	cols := make([]string, 0, to-from+1)
	for n := from; n <= to; n++ {
		name, _ := excelize.ColumnNumberToName(n)
		cols = append(cols, name)
	}
	return cols
}
