package dashboard

import (
	htmltemplate "html/template"
	"io"
	"text/template"
	"time"

	"cjb-incidents/core/incidents"
)

// Summary is the executive summary of the current filtered view.
type Summary struct {
	GeneratedAt  time.Time
	PeriodFrom   string
	PeriodTo     string
	Aggregations Aggregations
	TopTypes     []Group
	TopQuadrants []Group
	Active       ActiveFilters
}

const summaryTopN = 5

func BuildSummary(s *IncidentStore, now time.Time) Summary {
	dd := s.DropdownFilters()
	sum := Summary{
		GeneratedAt:  now,
		PeriodFrom:   "N/A",
		PeriodTo:     "N/A",
		Aggregations: s.Aggregations(),
		TopTypes:     topN(s.GroupBy(FieldType), summaryTopN),
		TopQuadrants: topN(s.GroupBy(FieldQuadrant), summaryTopN),
		Active:       s.ActiveFilters(),
	}
	if v := dd.value(DropdownDateFrom); v != "" {
		sum.PeriodFrom = v
	}
	if v := dd.value(DropdownDateTo); v != "" {
		sum.PeriodTo = v
	}
	return sum
}

func topN(groups []Group, n int) []Group {
	if len(groups) > n {
		groups = groups[:n]
	}
	return append([]Group{}, groups...)
}

var summaryTmpl = template.Must(template.New("summary").Funcs(template.FuncMap{
	"longDate": LongDate,
}).Parse(`Resumen Ejecutivo - Dashboard de Seguridad CJB
Fecha: {{longDate .GeneratedAt}}
Periodo: {{.PeriodFrom}} - {{.PeriodTo}}

Métricas Principales
  Total Incidentes:          {{.Aggregations.Total}}
  Indocumentados Detenidos:  {{.Aggregations.Undocumented}}
  Accidentes de Tránsito:    {{.Aggregations.Accidents}}
  Arrestos Realizados:       {{.Aggregations.Arrests}}
  Oficiales Activos:         {{.Aggregations.Officers}}
  Clausuras:                 {{.Aggregations.Closures}}

Distribución por Tipo
{{range .TopTypes}}  {{.Key}}: {{.Count}}
{{else}}  (sin datos)
{{end}}
Distribución por Cuadrante
{{range .TopQuadrants}}  {{.Key}}: {{.Count}}
{{else}}  (sin datos)
{{end}}{{if .Active.Count}}
Filtros activos ({{.Active.Count}})
{{range .Active.Items}}  {{.Key}} = {{.Value}}
{{end}}{{end}}`))

func RenderSummaryText(w io.Writer, sum Summary) error {
	return summaryTmpl.Execute(w, sum)
}

var spanishMonths = []string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// LongDate renders "01 de julio de 2025".
func LongDate(t time.Time) string {
	return t.Format("02") + " de " + spanishMonths[t.Month()-1] + " de " + t.Format("2006")
}

type incidentReport struct {
	Incident    incidents.Incident
	When        string
	Actions     string
	Narrative   string
	GeneratedOn string
}

var incidentReportTmpl = htmltemplate.Must(htmltemplate.New("incident").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<title>Informe de Incidente #{{.Incident.ID}} - Seguridad CJB</title>
<style>
body { font-family: Arial, sans-serif; padding: 30px; color: #333; line-height: 1.6; }
.header { text-align: center; border-bottom: 3px solid #1E3A5F; padding-bottom: 20px; margin-bottom: 30px; }
.header h1 { color: #1E3A5F; }
.header h2 { color: #2ECC71; font-weight: normal; }
.report-title { background: #1E3A5F; color: white; padding: 10px 20px; text-align: center; margin: 20px 0; }
.info-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 15px; margin: 20px 0; }
.info-item { border: 1px solid #ddd; padding: 12px; border-radius: 5px; }
.info-label { font-size: 0.75rem; color: #666; text-transform: uppercase; font-weight: bold; display: block; }
.info-value { color: #1E3A5F; font-weight: 600; }
.section-title { background: #f5f5f5; padding: 8px 15px; border-left: 4px solid #2ECC71; font-weight: bold; }
.narrative-box { border: 1px solid #ddd; padding: 15px; background: #fafafa; min-height: 100px; }
.footer { margin-top: 40px; display: grid; grid-template-columns: 1fr 1fr; gap: 30px; }
.signature-box { text-align: center; padding-top: 40px; border-top: 1px solid #333; }
.print-date { text-align: right; font-size: 0.8rem; color: #999; margin-top: 30px; }
</style>
</head>
<body>
<div class="header">
<h1>DIRECCIÓN DE SEGURIDAD</h1>
<h2>Ciudad Juan Bosch</h2>
<p>Santo Domingo Este, República Dominicana</p>
</div>
<div class="report-title">INFORME DE INCIDENTE #{{.Incident.ID}}</div>
<div class="info-grid">
<div class="info-item"><span class="info-label">Fecha y Hora</span><span class="info-value">{{.When}}</span></div>
<div class="info-item"><span class="info-label">Tipo de Incidente</span><span class="info-value">{{.Incident.Type}}</span></div>
<div class="info-item"><span class="info-label">Cuadrante</span><span class="info-value">{{.Incident.Quadrant}}</span></div>
<div class="info-item"><span class="info-label">Oficial a Cargo</span><span class="info-value">{{.Incident.Officer}}</span></div>
<div class="info-item"><span class="info-label">Indocumentados Detenidos</span><span class="info-value">{{.Incident.Undocumented}}</span></div>
<div class="info-item"><span class="info-label">Acciones Tomadas</span><span class="info-value">{{.Actions}}</span></div>
</div>
<div class="section">
<div class="section-title">NARRATIVA DEL INCIDENTE</div>
<div class="narrative-box">{{.Narrative}}</div>
</div>
{{with .Incident.Evidence}}<div class="section">
<div class="section-title">EVIDENCIA VISUAL</div>
<p>Disponible en: <a href="{{.}}">{{.}}</a></p>
</div>{{end}}
<div class="footer">
<div class="signature-box">Firma del Oficial</div>
<div class="signature-box">Firma del Supervisor</div>
</div>
<p class="print-date">Documento generado el {{.GeneratedOn}}</p>
</body>
</html>
`))

// RenderIncidentReport writes the printable single-incident report. Field
// values are HTML-escaped by the template.
func RenderIncidentReport(w io.Writer, inc incidents.Incident, now time.Time) error {
	data := incidentReport{
		Incident:    inc,
		When:        DisplayDateTime(inc.Date),
		Actions:     inc.Actions,
		Narrative:   inc.Narrative,
		GeneratedOn: LongDate(now),
	}
	if data.Actions == "" {
		data.Actions = "N/A"
	}
	if data.Narrative == "" {
		data.Narrative = "Sin narrativa registrada."
	}
	return incidentReportTmpl.Execute(w, data)
}
