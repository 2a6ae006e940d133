// Package intake turns tabular uploads and loosely keyed records into case
// inputs. It is the only place that knows about header spellings and file
// formats.
package intake

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoHeader          = errors.New("no header row")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrDuplicateColumn   = errors.New("duplicate column")
	ErrNotAnObject       = errors.New("record is not a JSON object")
)

func duplicateColumn(first, second, key string) error {
	return fmt.Errorf("%w: %q and %q both map to %s", ErrDuplicateColumn, first, second, key)
}

// Format is a tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks a format from a file name extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Read parses a CSV or XLSX table, choosing the parser from name. sheet
// selects an XLSX worksheet; empty means the first one.
func Read(name string, r io.Reader, sheet string) ([]Record, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return ReadXLSX(r, sheet)
	}
	return ReadCSV(r)
}

// ReadCSV parses a CSV table whose first row is the header. A line that
// cannot be parsed becomes a failed record; the rest of the table is
// still read.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []tableRow
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			rows = append(rows, tableRow{err: perr})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, tableRow{cells: cells})
	}
	return records(rows)
}

// ReadXLSX parses one worksheet of an XLSX workbook.
func ReadXLSX(r io.Reader, sheet string) ([]Record, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	rows := make([]tableRow, len(cells))
	for i, c := range cells {
		rows[i] = tableRow{cells: c}
	}
	return records(rows)
}

// tableRow is one physical row: its cells, or the error that kept it from
// being read.
type tableRow struct {
	cells []string
	err   error
}

func (t tableRow) blank() bool {
	if t.err != nil {
		return false
	}
	for _, cell := range t.cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// records maps rows to Records using the first non-blank row as header.
// Data rows are numbered from one; blank rows are skipped but counted so
// numbers match what the user sees under the header.
func records(rows []tableRow) ([]Record, error) {
	start := slices.IndexFunc(rows, func(row tableRow) bool { return !row.blank() })
	if start < 0 {
		return nil, ErrNoHeader
	}
	if err := rows[start].err; err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	headers, err := headerKeys(rows[start].cells)
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(rows)-start-1)
	for i, row := range rows[start+1:] {
		if row.blank() {
			continue
		}
		if row.err != nil {
			out = append(out, FailedRecord(i+1, row.err))
			continue
		}
		values := make(map[string]string, len(headers))
		for col, key := range headers {
			if key == "" {
				continue
			}
			if col < len(row.cells) {
				values[key] = strings.TrimSpace(row.cells[col])
			} else {
				values[key] = ""
			}
		}
		out = append(out, Record{Row: i + 1, Values: values})
	}
	return out, nil
}

// headerKeys normalizes a header row. Two columns naming the same field
// are an error.
func headerKeys(header []string) ([]string, error) {
	keys := make([]string, len(header))
	seen := make(map[string]string, len(header))
	for i, h := range header {
		key := NormalizeKey(h)
		keys[i] = key
		if key == "" {
			continue
		}
		if prev, ok := seen[key]; ok {
			return nil, duplicateColumn(prev, strings.TrimSpace(h), key)
		}
		seen[key] = strings.TrimSpace(h)
	}
	return keys, nil
}
