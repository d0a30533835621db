package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"cjb-incidents/core/incidents"
)

const ExportSheet = "Incidentes"

// ExportHeaders is the column order of every export format.
var ExportHeaders = []string{"ID", "Fecha", "Tipo", "Cuadrante", "Oficial", "Indocumentados", "Narrativa", "Acciones"}

type ExportRow struct {
	ID             string
	Fecha          string
	Tipo           string
	Cuadrante      string
	Oficial        string
	Indocumentados int
	Narrativa      string
	Acciones       string
}

func (r ExportRow) values() []any {
	return []any{r.ID, r.Fecha, r.Tipo, r.Cuadrante, r.Oficial, r.Indocumentados, r.Narrativa, r.Acciones}
}

func (r ExportRow) strings() []string {
	return []string{r.ID, r.Fecha, r.Tipo, r.Cuadrante, r.Oficial, strconv.Itoa(r.Indocumentados), r.Narrativa, r.Acciones}
}

// DisplayDate renders dd/mm/yyyy, or "N/A" for undated incidents.
func DisplayDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("02/01/2006")
}

// DisplayDateTime adds hh:mm to DisplayDate.
func DisplayDateTime(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("02/01/2006 15:04")
}

func ExportRows(items []incidents.Incident) []ExportRow {
	out := make([]ExportRow, 0, len(items))
	for _, inc := range items {
		out = append(out, ExportRow{
			ID:             inc.ID,
			Fecha:          DisplayDate(inc.Date),
			Tipo:           inc.Type,
			Cuadrante:      inc.Quadrant,
			Oficial:        inc.Officer,
			Indocumentados: inc.Undocumented,
			Narrativa:      inc.Narrative,
			Acciones:       inc.Actions,
		})
	}
	return out
}

// WriteExcel writes rows as a single-sheet workbook.
func WriteExcel(w io.Writer, rows []ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(ExportSheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	header := make([]any, len(ExportHeaders))
	for i, h := range ExportHeaders {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, r.values()); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename builds names like Incidentes_CJB_2025-07-01.xlsx.
func ExportFilename(prefix, ext string, now time.Time) string {
	if prefix == "" {
		prefix = "Incidentes_CJB"
	}
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("2006-01-02"), ext)
}
