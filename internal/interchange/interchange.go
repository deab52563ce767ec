// Package interchange converts between stored expense records and tabular
// file rows (delimited text and spreadsheet workbooks). It deliberately knows
// nothing about persistence or HTTP; callers hand it plain records.
package interchange

import (
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one tabular row of expense data. A zero Date means the source
// row carried no date.
type Record struct {
	Description string
	Amount      decimal.Decimal
	Category    string
	Date        time.Time
}

// Format identifies a supported interchange file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// columnHeaders is the fixed export column order.
var columnHeaders = []string{"Description", "Amount", "Category", "Date"}

// dateLayout renders dates as ISO calendar dates without a time component.
const dateLayout = "2006-01-02"

// ParseFormat validates a format name from a request path.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

// DetectFormat guesses the format of an uploaded file from its name.
// Anything that is not a spreadsheet workbook is treated as delimited text,
// matching how the uploads were handled historically.
func DetectFormat(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// unixEpochSerial is the spreadsheet serial number of 1970-01-01. Spreadsheet
// serials count days since 1899-12-30 (the off-by-two accounts for the
// classic Lotus leap-year bug).
const unixEpochSerial = 25569

// TimeFromSerial converts a spreadsheet numeric date serial to a calendar
// day in UTC. Serial 44927 maps to 2023-01-01.
func TimeFromSerial(serial float64) time.Time {
	days := math.Floor(serial - unixEpochSerial)
	t := time.Unix(int64(days)*86400, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
