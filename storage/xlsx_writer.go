package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	evenRowFill = "DDDDDD"
	oddRowFill  = "FFFFFF"
)

// XLSXWriter renders sheets into a styled workbook: bold centred headers,
// alternating row fills and column widths fitted to content.
type XLSXWriter struct {
	path string
	file *excelize.File
}

// NewXLSXWriter prepares a workbook that will be saved to path on WriteSheets.
func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}
	return &XLSXWriter{path: path, file: excelize.NewFile()}, nil
}

func (x *XLSXWriter) WriteSheets(sheets []Sheet) error {
	if len(sheets) == 0 {
		return nil
	}

	headerStyle, err := x.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	evenStyle, err := x.rowStyle(evenRowFill)
	if err != nil {
		return err
	}
	oddStyle, err := x.rowStyle(oddRowFill)
	if err != nil {
		return err
	}

	defaultSheet := x.file.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := x.file.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return fmt.Errorf("xlsx: rename sheet: %w", err)
			}
		} else if _, err := x.file.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("xlsx: create sheet %q: %w", sheet.Name, err)
		}

		if err := x.writeSheet(sheet, headerStyle, evenStyle, oddStyle); err != nil {
			return err
		}
	}

	if err := x.file.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return nil
}

func (x *XLSXWriter) rowStyle(fill string) (int, error) {
	id, err := x.file.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Alignment: &excelize.Alignment{WrapText: true},
	})
	if err != nil {
		return 0, fmt.Errorf("xlsx: row style: %w", err)
	}
	return id, nil
}

func (x *XLSXWriter) writeSheet(sheet Sheet, headerStyle, evenStyle, oddStyle int) error {
	widths := make([]int, len(sheet.Header))

	write := func(rowNum int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = v
			if i < len(widths) && utf8.RuneCountInString(v) > widths[i] {
				widths[i] = utf8.RuneCountInString(v)
			}
		}
		return x.file.SetSheetRow(sheet.Name, cell, &row)
	}

	if err := write(1, sheet.Header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}
	if err := x.styleRow(sheet.Name, 1, len(sheet.Header), headerStyle); err != nil {
		return err
	}

	for i, values := range sheet.Rows {
		rowNum := i + 2
		if err := write(rowNum, values); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", rowNum, err)
		}
		style := oddStyle
		if rowNum%2 == 0 {
			style = evenStyle
		}
		if err := x.styleRow(sheet.Name, rowNum, len(sheet.Header), style); err != nil {
			return err
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := x.file.SetColWidth(sheet.Name, col, col, float64(w+2)); err != nil {
			return fmt.Errorf("xlsx: column width: %w", err)
		}
	}
	return nil
}

func (x *XLSXWriter) styleRow(sheet string, rowNum, cols, style int) error {
	if cols == 0 {
		return nil
	}
	first, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, rowNum)
	if err != nil {
		return err
	}
	if err := x.file.SetCellStyle(sheet, first, last, style); err != nil {
		return fmt.Errorf("xlsx: style row %d: %w", rowNum, err)
	}
	return nil
}

func (x *XLSXWriter) Close() error {
	return x.file.Close()
}
