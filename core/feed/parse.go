package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cjb-incidents/core/incidents"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Format is a supported upload format, chosen by file extension.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatJSON  Format = "json"
)

func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatExcel, nil
	case ".json":
		return FormatJSON, nil
	case ".xls":
		return "", fmt.Errorf("%w: legacy .xls workbook, save it as .xlsx", ErrUnsupportedFormat)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// ParseFile reads rows from an uploaded CSV, Excel or JSON file.
func ParseFile(name string, r io.Reader) ([]incidents.RawRow, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	var rows []incidents.RawRow
	switch format {
	case FormatCSV:
		rows, err = ParseCSV(r)
	case FormatExcel:
		rows, err = ParseWorkbook(r)
	case FormatJSON:
		var snap Snapshot
		snap, err = DecodeSnapshot(r)
		rows = snap.Data
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// ParsePath opens path and parses it according to its extension.
func ParsePath(path string) ([]incidents.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFile(filepath.Base(path), f)
}

// ParseCSV reads a header row followed by data rows. Rows whose cells are all
// blank are skipped; short rows yield empty values.
func ParseCSV(r io.Reader) ([]incidents.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(utf8BOM))
	}
	return tableRows(header, records[1:], nil), nil
}

// ParseWorkbook reads the first sheet of an Excel workbook. Date columns
// stored as serial numbers are rendered day-first so every input format
// reaches the normalizer as the same text.
func ParseWorkbook(r io.Reader) ([]incidents.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	return tableRows(records[0], records[1:], serialDateCell), nil
}

// ParseWorkbookFile is ParseWorkbook over a path.
func ParseWorkbookFile(path string) ([]incidents.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseWorkbook(f)
}

func serialDateCell(column, value string) string {
	isDate := false
	for _, c := range incidents.DateColumns {
		if c == column {
			isDate = true
			break
		}
	}
	if !isDate {
		return value
	}
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial <= 0 {
		return value
	}
	return incidents.FormatDayFirst(incidents.ExcelSerialToTime(serial, time.UTC))
}

func tableRows(header []string, records [][]string, cell func(column, value string) string) []incidents.RawRow {
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	rows := make([]incidents.RawRow, 0, len(records))
	for _, rec := range records {
		if blankRecord(rec) {
			continue
		}
		row := make(incidents.RawRow, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			if cell != nil && v != "" {
				v = cell(col, v)
			}
			row[col] = v
		}
		rows = append(rows, row)
	}
	return rows
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// IsEmpty reports whether err means the input held no data rows.
func IsEmpty(err error) bool {
	return errors.Is(err, ErrEmptyFile)
}
