// Package export writes and reads grid data as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gravitrone/clientdesk/internal/grid"
)

// SheetName is the worksheet holding the rows.
const SheetName = "Locations"

// Built-in Excel number formats.
const (
	numFmtGrouped   = 3 // #,##0
	numFmtGrouped2  = 4 // #,##0.00
	defaultColWidth = 12
)

// WriteXLSX writes rows as a workbook: one header row and one row per
// record, numbers kept numeric with grouped formats.
func WriteXLSX(w io.Writer, columns []grid.Column, rows []grid.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	grouped, err := f.NewStyle(&excelize.Style{NumFmt: numFmtGrouped})
	if err != nil {
		return fmt.Errorf("number style: %w", err)
	}
	grouped2, err := f.NewStyle(&excelize.Style{NumFmt: numFmtGrouped2})
	if err != nil {
		return fmt.Errorf("number style: %w", err)
	}

	for ci, col := range columns {
		cell, err := excelize.CoordinatesToCellName(ci+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, col.Label); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		name, _ := excelize.ColumnNumberToName(ci + 1)
		width := float64(col.Width + 2)
		if col.Width == 0 {
			width = defaultColWidth
		}
		if err := f.SetColWidth(SheetName, name, name, width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}
	if len(columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		if err := f.SetCellStyle(SheetName, "A1", last, header); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	for ri, row := range rows {
		for ci, col := range columns {
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, cellValue(row.Value(col.Key), col)); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}

	lastRow := len(rows) + 1
	for ci, col := range columns {
		name, _ := excelize.ColumnNumberToName(ci + 1)
		var style int
		switch {
		case col.Type == grid.TypeCurrency:
			style = grouped
		case col.Type == grid.TypeNumber && col.Format == grid.FormatDecimal2:
			style = grouped2
		case col.Type == grid.TypeNumber && !col.Sequence:
			style = grouped
		default:
			continue
		}
		if len(rows) == 0 {
			continue
		}
		if err := f.SetCellStyle(SheetName, name+"2", fmt.Sprintf("%s%d", name, lastRow), style); err != nil {
			return fmt.Errorf("style %s: %w", name, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// cellValue is the workbook value of a stored value: numbers stay numeric,
// select values show their label.
func cellValue(raw any, col grid.Column) any {
	if raw == nil {
		return nil
	}
	switch col.Type {
	case grid.TypeNumber, grid.TypeCurrency:
		if f, ok := raw.(float64); ok {
			return f
		}
	}
	return grid.ToDisplay(raw, col)
}

// ReadTSV reads the first worksheet of a workbook as tab-separated text,
// ready for grid.ParsePaste.
func ReadTSV(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", sheets[0], err)
	}

	var b strings.Builder
	clean := strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")
	for _, cells := range rows {
		for i, c := range cells {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(clean.Replace(c))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
