package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Default weights written into a scaffolded template
const (
	DefaultComponentWeight = 0.4
	DefaultFinalWeight     = 0.6
)

// NewTemplateWorkbook builds a blank grading-report template laid out for
// schema: title, banners, weight cells, a header row above the student rows
// and a signature footer below them.
func NewTemplateWorkbook(schema ReportSchema) (*excelize.File, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	sheet := "Sheet1"
	if schema.Sheet != "" && schema.Sheet != sheet {
		if err := f.SetSheetName(sheet, schema.Sheet); err != nil {
			_ = f.Close()
			return nil, err
		}
		sheet = schema.Sheet
	}

	values := map[string]interface{}{
		"A1":                            "BẢNG ĐIỂM HỌC PHẦN",
		schema.Cells.ScoreTypeBanner:    "Loại điểm: ",
		schema.Cells.StudentCountBanner: "Tổng số: ",
		schema.Cells.ComponentWeight:    DefaultComponentWeight,
		schema.Cells.FinalWeight:        DefaultFinalWeight,
	}
	labels := map[string]string{
		schema.Cells.ClassCode:       "Mã lớp:",
		schema.Cells.ClassName:       "Tên lớp:",
		schema.Cells.ComponentWeight: "Trọng số thành phần:",
		schema.Cells.FinalWeight:     "Trọng số cuối kỳ:",
	}
	for cell, label := range labels {
		if left, ok := leftOf(cell); ok {
			values[left] = label
		}
	}

	if schema.StartRow > 1 {
		header := schema.StartRow - 1
		values[Cell(schema.Columns.Ordinal, header)] = "STT"
		values[Cell(schema.Columns.StudentID, header)] = "Mã SV"
		values[Cell(schema.Columns.StudentName, header)] = "Họ và tên"
		values[Cell(schema.Columns.ComponentScore, header)] = "Điểm thành phần"
		values[Cell(schema.Columns.FinalScore, header)] = "Điểm cuối kỳ"
		values[Cell(schema.Columns.ComputedScore, header)] = "Điểm tổng kết"
	}

	_, bannerRow, _ := excelize.CellNameToCoordinates(schema.Cells.StudentCountBanner)
	footerRow := bannerRow + 2
	if footerRow <= schema.StartRow {
		footerRow = schema.StartRow + 2
	}
	values[Cell(schema.Columns.ComputedScore, footerRow)] = "Người lập bảng"

	for cell, v := range values {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to scaffold %s: %w", cell, err)
		}
	}

	if schema.StartRow > 1 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err == nil {
			header := schema.StartRow - 1
			_ = f.SetCellStyle(sheet, Cell(schema.Columns.BorderFrom, header), Cell(schema.Columns.BorderTo, header), bold)
		}
	}
	return f, nil
}

func leftOf(cell string) (string, bool) {
	col, row, err := excelize.CellNameToCoordinates(cell)
	if err != nil || col <= 1 {
		return "", false
	}
	name, err := excelize.CoordinatesToCellName(col-1, row)
	if err != nil {
		return "", false
	}
	return name, true
}
