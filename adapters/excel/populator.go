package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gradesheet/domain/roster"
	"gradesheet/internal"

	"github.com/xuri/excelize/v2"
)

// StudentResult is what was written for one roster row
type StudentResult struct {
	Ordinal        int      `json:"ordinal"`
	StudentID      string   `json:"studentId"`
	Name           string   `json:"name"`
	ComponentScore *float64 `json:"componentScore"`
	FinalScore     *float64 `json:"finalScore"`
	ComputedScore  *float64 `json:"computedScore"`
}

// PopulateResult describes a populated report
type PopulateResult struct {
	Sheet           string                 `json:"sheet"`
	StudentCount    int                    `json:"studentCount"`
	Resolved        roster.ResolvedColumns `json:"resolved"`
	ClassInfo       roster.ClassInfo       `json:"classInfo"`
	ComponentWeight *float64               `json:"componentWeight"`
	FinalWeight     *float64               `json:"finalWeight"`
	Students        []StudentResult        `json:"students"`
}

// ComputedScores returns the computed score of every student that has one
func (r *PopulateResult) ComputedScores() []float64 {
	scores := make([]float64, 0, len(r.Students))
	for _, s := range r.Students {
		if s.ComputedScore != nil {
			scores = append(scores, *s.ComputedScore)
		}
	}
	return scores
}

// Populator fills a grading-report template from roster rows
type Populator struct {
	schema ReportSchema
	logger *internal.Logger
}

// NewPopulator creates a populator for schema
func NewPopulator(schema ReportSchema) *Populator {
	return &Populator{
		schema: schema,
		logger: internal.DefaultLogger.With("Populator"),
	}
}

// Populate writes rows into f in place. Fixed cells (metadata, banners,
// weights) are handled before student rows are inserted, so they are always
// addressed at their schema coordinates. The workbook is not saved.
func (p *Populator) Populate(f *excelize.File, rows []roster.RawRow, spec roster.ScoreSpec, scoreTypeLabel string) (*PopulateResult, error) {
	s := p.schema
	sheet, err := SheetName(f, s)
	if err != nil {
		return nil, err
	}
	result := &PopulateResult{
		Sheet:        sheet,
		StudentCount: len(rows),
		Students:     make([]StudentResult, 0, len(rows)),
	}

	if w, ok := numericCell(f, sheet, s.Cells.ComponentWeight); ok {
		result.ComponentWeight = &w
	} else {
		p.logger.Warn("weight cell %s is not numeric; computed scores will be left blank", s.Cells.ComponentWeight)
	}
	if w, ok := numericCell(f, sheet, s.Cells.FinalWeight); ok {
		result.FinalWeight = &w
	} else {
		p.logger.Warn("weight cell %s is not numeric; computed scores will be left blank", s.Cells.FinalWeight)
	}

	result.ClassInfo = roster.ExtractClassInfo(roster.SectionCandidate(rows, s.Source.Section))
	if result.ClassInfo.HasClassCode && result.ClassInfo.ClassCode != "" {
		if err := f.SetCellStr(sheet, s.Cells.ClassCode, result.ClassInfo.ClassCode); err != nil {
			return nil, fmt.Errorf("failed to write class code: %w", err)
		}
	}
	if result.ClassInfo.ClassName != "" {
		if err := f.SetCellStr(sheet, s.Cells.ClassName, result.ClassInfo.ClassName); err != nil {
			return nil, fmt.Errorf("failed to write class name: %w", err)
		}
	}

	if scoreTypeLabel != "" {
		if err := appendToCell(f, sheet, s.Cells.ScoreTypeBanner, scoreTypeLabel); err != nil {
			return nil, fmt.Errorf("failed to write score type banner: %w", err)
		}
	}
	if err := appendToCell(f, sheet, s.Cells.StudentCountBanner, strconv.Itoa(len(rows))+s.StudentCountSuffix); err != nil {
		return nil, fmt.Errorf("failed to write student count banner: %w", err)
	}

	if len(rows) == 0 {
		return result, nil
	}
	if err := f.InsertRows(sheet, s.StartRow, len(rows)); err != nil {
		return nil, fmt.Errorf("failed to insert %d rows at %d: %w", len(rows), s.StartRow, err)
	}

	borders := newBorderStyler(f)
	borderCols := s.BorderColumns()
	for i, row := range rows {
		rowNumber := s.StartRow + i
		student, err := p.writeStudent(f, sheet, rowNumber, i, row, spec, result)
		if err != nil {
			return nil, fmt.Errorf("failed to write student row %d: %w", rowNumber, err)
		}
		result.Students = append(result.Students, student)

		for _, col := range borderCols {
			if err := borders.apply(sheet, Cell(col, rowNumber)); err != nil {
				return nil, fmt.Errorf("failed to apply border on row %d: %w", rowNumber, err)
			}
		}
	}

	p.logger.Debug("populated %d students on %q (component=%q final=%q)",
		len(rows), sheet, result.Resolved.ComponentScore, result.Resolved.FinalScore)
	return result, nil
}

func (p *Populator) writeStudent(f *excelize.File, sheet string, rowNumber, index int, row roster.RawRow, spec roster.ScoreSpec, result *PopulateResult) (StudentResult, error) {
	s := p.schema
	student := StudentResult{
		Ordinal:   index + 1,
		StudentID: row.Value(s.Source.StudentID),
		Name:      row.Value(s.Source.StudentName),
	}

	if err := f.SetCellValue(sheet, Cell(s.Columns.Ordinal, rowNumber), student.Ordinal); err != nil {
		return student, err
	}
	if student.StudentID != "" {
		if err := f.SetCellStr(sheet, Cell(s.Columns.StudentID, rowNumber), student.StudentID); err != nil {
			return student, err
		}
	}
	if student.Name != "" {
		if err := f.SetCellStr(sheet, Cell(s.Columns.StudentName, rowNumber), student.Name); err != nil {
			return student, err
		}
	}

	resolved := spec.Resolve(row)
	if index == 0 {
		result.Resolved = resolved
	}
	componentCell := Cell(s.Columns.ComponentScore, rowNumber)
	finalCell := Cell(s.Columns.FinalScore, rowNumber)
	if resolved.ComponentScore != "" {
		if err := writeScore(f, sheet, componentCell, row.Value(resolved.ComponentScore)); err != nil {
			return student, err
		}
	}
	if resolved.FinalScore != "" {
		if err := writeScore(f, sheet, finalCell, row.Value(resolved.FinalScore)); err != nil {
			return student, err
		}
	}

	// Operands are read back from the sheet so an unresolved column falls
	// back to whatever the template holds there.
	component, componentOK := numericCell(f, sheet, componentCell)
	final, finalOK := numericCell(f, sheet, finalCell)
	if componentOK {
		student.ComponentScore = &component
	}
	if finalOK {
		student.FinalScore = &final
	}
	if componentOK && finalOK && result.ComponentWeight != nil && result.FinalWeight != nil {
		computed := component*(*result.ComponentWeight) + final*(*result.FinalWeight)
		if err := f.SetCellFloat(sheet, Cell(s.Columns.ComputedScore, rowNumber), computed, -1, 64); err != nil {
			return student, err
		}
		student.ComputedScore = &computed
	}
	return student, nil
}

// writeScore stores numeric text as a number and anything else verbatim.
// Empty values leave the cell blank.
func writeScore(f *excelize.File, sheet, cell, raw string) error {
	if raw == "" {
		return nil
	}
	if v, ok := ParseNumber(raw); ok {
		return f.SetCellFloat(sheet, cell, v, -1, 64)
	}
	return f.SetCellStr(sheet, cell, raw)
}

// ParseNumber parses a finite decimal number, ignoring surrounding space
func ParseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func numericCell(f *excelize.File, sheet, cell string) (float64, bool) {
	raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, false
	}
	return ParseNumber(raw)
}

func appendToCell(f *excelize.File, sheet, cell, suffix string) error {
	existing, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}
	return f.SetCellStr(sheet, cell, existing+suffix)
}
