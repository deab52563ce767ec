package interchange

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/expense-tracker/internal"
)

// sheetName is the single worksheet written on xlsx export.
const sheetName = "Expenses"

// Write renders records in the requested format.
func Write(w io.Writer, format Format, records []Record) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, records)
	default:
		return WriteCSV(w, records)
	}
}

// WriteCSV writes records as UTF-8 delimited text with a fixed header row.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(columnHeaders); err != nil {
		return internal.NewInterchangeError("failed to write export", internal.ErrCodeInterchangeFailure, err)
	}

	for _, rec := range records {
		row := []string{
			rec.Description,
			rec.Amount.String(),
			rec.Category,
			formatDate(rec.Date),
		}
		if err := cw.Write(row); err != nil {
			return internal.NewInterchangeError("failed to write export", internal.ErrCodeInterchangeFailure, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return internal.NewInterchangeError("failed to write export", internal.ErrCodeInterchangeFailure, err)
	}
	return nil
}

// WriteXLSX writes records as a single-sheet workbook.
func WriteXLSX(w io.Writer, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return internal.NewInterchangeError("failed to write export", internal.ErrCodeInterchangeFailure, err)
	}

	widths := []float64{30, 15, 20, 20}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return internal.NewInterchangeError("failed to write export", internal.ErrCodeInterchangeFailure, err)
		}
	}

	for i, header := range columnHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return internal.NewInterchangeError("failed to write export", internal.ErrCodeInterchangeFailure, err)
		}
	}

	for i, rec := range records {
		row := i + 2
		values := []any{
			rec.Description,
			rec.Amount.InexactFloat64(),
			rec.Category,
			formatDate(rec.Date),
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return internal.NewInterchangeError("failed to write export", internal.ErrCodeInterchangeFailure, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return internal.NewInterchangeError("failed to write export", internal.ErrCodeInterchangeFailure, err)
	}
	return nil
}

// ContentType returns the MIME type to serve for a format.
func ContentType(format Format) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Filename returns the download file name for a format.
func Filename(format Format) string {
	return fmt.Sprintf("expenses.%s", format)
}
