package feed

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"cjb-incidents/core/incidents"
)

func TestParseCSV(t *testing.T) {
	input := "\ufeffId,Hora de inicio,Cuadrante,Oficial a cargo\n" +
		"1,1/7/2025 10:00,b1,Pérez\n" +
		",,,\n" +
		"\n" +
		"2,2/7/2025 09:15,B2\n"
	rows, err := ParseFile("Registro.CSV", strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["Id"] != "1" || rows[0][incidents.ColStartTime] != "1/7/2025 10:00" {
		t.Fatalf("unexpected first row %v", rows[0])
	}
	if v, ok := rows[1][incidents.ColOfficer]; !ok || v != "" {
		t.Fatalf("short rows must yield empty values, got %q %v", v, ok)
	}
}

func TestParseFileErrors(t *testing.T) {
	if _, err := ParseFile("data.txt", strings.NewReader("x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	if _, err := ParseFile("data.csv", strings.NewReader("Id,Tipo\n\n")); !IsEmpty(err) {
		t.Fatalf("expected empty file, got %v", err)
	}
	if _, err := ParseFile("data.csv", strings.NewReader("")); !IsEmpty(err) {
		t.Fatalf("expected empty file, got %v", err)
	}
	if _, err := ParseFile("data.json", strings.NewReader(`{"data":[]}`)); !IsEmpty(err) {
		t.Fatalf("expected empty file, got %v", err)
	}
}

func TestParseWorkbookConvertsSerialDates(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]any{
		"A1": "Id", "B1": incidents.ColStartTime, "C1": incidents.ColUndocumented, "D1": incidents.ColNarrative,
		"A2": 1, "B2": 45839.4375, "C2": 2, "D2": "Control en acceso norte",
		"A3": 2, "B3": "3/7/2025 08:00",
	}
	for cell, v := range cells {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	rows, err := ParseFile("incidentes.xlsx", &buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0][incidents.ColStartTime]; got != "1/7/2025 10:30" {
		t.Fatalf("serial date not converted: %q", got)
	}
	if rows[0][incidents.ColUndocumented] != "2" || rows[0]["Id"] != "1" {
		t.Fatalf("unexpected numeric cells %v", rows[0])
	}
	if rows[1][incidents.ColStartTime] != "3/7/2025 08:00" || rows[1][incidents.ColNarrative] != "" {
		t.Fatalf("unexpected second row %v", rows[1])
	}
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{"a.xlsm": FormatExcel, "b.XLSX": FormatExcel, "c.json": FormatJSON, "d.csv": FormatCSV}
	for name, want := range cases {
		got, err := DetectFormat(name)
		if err != nil || got != want {
			t.Fatalf("DetectFormat(%q) = %q, %v", name, got, err)
		}
	}
	for _, name := range []string{"old.xls", "OLD.XLS", "notes.txt"} {
		if _, err := DetectFormat(name); !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("DetectFormat(%q) err = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}

func TestParseFileRejectsLegacyXLS(t *testing.T) {
	_, err := ParseFile("Reporte.xls", strings.NewReader("\xd0\xcf\x11\xe0"))
	if !errors.Is(err, ErrUnsupportedFormat) || !strings.Contains(err.Error(), ".xlsx") {
		t.Fatalf("expected legacy .xls rejection, got %v", err)
	}
}
