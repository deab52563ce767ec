package interchange

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/expense-tracker/internal"
)

// placeholderDescription fills rows imported without a description.
const placeholderDescription = "No description"

// defaultCategory fills rows imported without a category. Imported category
// values are stored verbatim and are not checked against the known set.
const defaultCategory = "Other"

// textDateLayouts are tried in order when a date cell holds text.
var textDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// Read parses an uploaded tabular file into records.
func Read(r io.Reader, format Format) ([]Record, error) {
	if format == FormatXLSX {
		return ReadXLSX(r)
	}
	return ReadCSV(r)
}

// ReadCSV parses delimited text. The first row is the header; remaining rows
// become records. A file with no data rows is an error.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, internal.NewInterchangeError("failed to parse file", internal.ErrCodeInterchangeFailure, err)
		}
		row := make([]string, len(record))
		copy(row, record)
		rows = append(rows, row)
	}

	return recordsFromRows(rows)
}

// ReadXLSX parses the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, internal.NewInterchangeError("failed to parse file", internal.ErrCodeInterchangeFailure, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, internal.ErrEmptyImportFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, internal.NewInterchangeError("failed to parse file", internal.ErrCodeInterchangeFailure, err)
	}

	return recordsFromRows(rows)
}

// recordsFromRows maps a header row plus data rows to records. Column names
// are matched case-insensitively; missing cells fall back to defaults rather
// than failing the row.
func recordsFromRows(rows [][]string) ([]Record, error) {
	if len(rows) < 2 {
		return nil, internal.ErrEmptyImportFile
	}

	columns := headerIndex(rows[0])
	now := time.Now()

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, Record{
			Description: cellOrDefault(row, columns.description, placeholderDescription),
			Amount:      parseAmount(cell(row, columns.amount)),
			Category:    cellOrDefault(row, columns.category, defaultCategory),
			Date:        parseDate(cell(row, columns.date), now),
		})
	}

	return records, nil
}

// columnIndex holds the position of each recognized column, -1 when absent.
type columnIndex struct {
	description int
	amount      int
	category    int
	date        int
}

func headerIndex(header []string) columnIndex {
	columns := columnIndex{description: -1, amount: -1, category: -1, date: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "description":
			columns.description = i
		case "amount":
			columns.amount = i
		case "category":
			columns.category = i
		case "date":
			columns.date = i
		}
	}
	return columns
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellOrDefault(row []string, idx int, fallback string) string {
	if v := cell(row, idx); v != "" {
		return v
	}
	return fallback
}

// parseAmount coerces a cell to a decimal, defaulting to zero when the cell
// is absent or not numeric.
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// parseDate resolves a date cell: numeric cells are spreadsheet serials,
// text cells are tried against known layouts, and anything unparseable
// falls back to now.
func parseDate(s string, now time.Time) time.Time {
	if s == "" {
		return now
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return TimeFromSerial(serial)
	}

	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return now
}
