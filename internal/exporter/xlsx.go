package exporter

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of an exported workbook.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// XLSXWriter writes tables as an Excel workbook.
type XLSXWriter struct{}

// NewXLSXWriter creates a new workbook writer
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// Write writes every sheet, in order, to dst. Missing numbers become empty
// cells.
func (w *XLSXWriter) Write(dst io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sheet.Name, err)
		}

		if err := writeSheet(f, sheet, headerStyle); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet.Name, err)
		}
	}

	return f.Write(dst)
}

func writeSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	for c, h := range sheet.Headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet.Name, cell, h); err != nil {
			return err
		}
	}
	if len(sheet.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
		if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
			return err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(sheet.Headers))
		if err := f.SetColWidth(sheet.Name, "A", lastCol, 18); err != nil {
			return err
		}
	}

	for r, row := range sheet.Rows {
		for c, v := range row {
			if fv, ok := v.(float64); ok && (math.IsNaN(fv) || math.IsInf(fv, 0)) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet.Name, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
