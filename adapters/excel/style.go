package excel

import (
	"github.com/xuri/excelize/v2"
)

const borderThin = 1

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "top", Color: "000000", Style: borderThin},
		{Type: "left", Color: "000000", Style: borderThin},
		{Type: "bottom", Color: "000000", Style: borderThin},
		{Type: "right", Color: "000000", Style: borderThin},
	}
}

// borderStyler adds a thin border to cells while keeping the rest of their
// style. Derived styles are cached by the cell's original style id.
type borderStyler struct {
	f     *excelize.File
	cache map[int]int
}

func newBorderStyler(f *excelize.File) *borderStyler {
	return &borderStyler{f: f, cache: make(map[int]int)}
}

func (b *borderStyler) apply(sheet, cell string) error {
	base, err := b.f.GetCellStyle(sheet, cell)
	if err != nil {
		return err
	}
	styleID, ok := b.cache[base]
	if !ok {
		style := &excelize.Style{}
		if base != 0 {
			if existing, err := b.f.GetStyle(base); err == nil && existing != nil {
				style = existing
			}
		}
		style.Border = thinBorder()
		styleID, err = b.f.NewStyle(style)
		if err != nil {
			return err
		}
		b.cache[base] = styleID
	}
	return b.f.SetCellStyle(sheet, cell, cell, styleID)
}
