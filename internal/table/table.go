// Package table turns LehrerOffice export files into rows for the
// validation engine and writes corrected rows back out.
//
// CSV exports come in UTF-8 (with or without BOM) or Windows-1252 and use
// semicolons, commas or tabs; XLSX exports are read from the first sheet.
// Cells are cleaned of spreadsheet artifacts; everything stays a string.
package table

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/pupilbridge/internal/core"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyFile           = errors.New("empty file")
)

// Table is a parsed export: its header in file order and one row per record.
type Table struct {
	Headers []string
	Rows    []core.Row
}

// Read parses r according to the extension of name.
func Read(name string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return ReadCSV(r)
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, filepath.Ext(name))
	}
}

// build maps records to rows keyed by the cleaned header. Blank records and
// unnamed columns are dropped; short records leave their trailing cells
// absent.
func build(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	header := records[0]
	headers := make([]string, 0, len(header))
	index := make([]int, 0, len(header))
	for i, h := range header {
		h = core.CleanCell(h)
		if h == "" {
			continue
		}
		headers = append(headers, h)
		index = append(index, i)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no header", ErrEmptyFile)
	}

	t := &Table{Headers: headers}
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make(core.Row, len(headers))
		for j, i := range index {
			if i < len(rec) {
				row[headers[j]] = core.CleanCell(rec[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, utf8BOM)
}
