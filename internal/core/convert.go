package core

// convert.go turns raw export cells into comparable strings and parses the
// date and number formats found in LehrerOffice exports:
//   - Swiss (DD.MM.YYYY), ISO (YYYY-MM-DD) and slash (DD/MM/YYYY) dates
//   - spreadsheet date serials (days since 1899-12-30)
//   - numbers with apostrophe thousands separators and decimal commas
//   - Excel formula prefixes (="value") and stray quotes
//
// Parse helpers report ok=false for anything they cannot read with
// confidence; they never panic.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// dateLayouts are tried in order. Day-first layouts only; LehrerOffice never
// exports US month-first dates.
var dateLayouts = []string{
	"02.01.2006", "2.1.2006",
	"2006-01-02",
	"02/01/2006", "2/1/2006",
}

// Spreadsheet serial bounds: 1 is 1899-12-31, 2958465 is 9999-12-31.
const (
	minDateSerial = 1
	maxDateSerial = 2958465
)

var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// CellString renders a cell as a trimmed string. Absent and nil cells become
// "", integral floats are printed without a fractional part.
func CellString(row Row, column string) string {
	v, ok := row[column]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CleanCell removes common export artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// ParseDate parses the date formats accepted for date columns.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Spreadsheet serial, e.g. 45123 or 45123.0
	if numericRegex.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil && f >= minDateSerial && f <= maxDateSerial && f == math.Trunc(f) {
			return spreadsheetEpoch.AddDate(0, 0, int(f)), true
		}
	}

	return time.Time{}, false
}

// ParseNumber parses a number, accepting Swiss thousands separators
// (1'234.50), a decimal comma (12,5) and surrounding whitespace.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatDate renders a parsed date in the Swiss format PUPIL imports.
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
