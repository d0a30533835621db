package incidents

import "time"

// RawRow is one spreadsheet row keyed by its header text.
type RawRow map[string]string

// Get returns the first non-empty value among keys, trimmed.
func (r RawRow) Get(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if trimmed := trimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// Source column headers, as exported by the intake form.
const (
	ColID                = "Id"
	ColStartTime         = "Hora de inicio"
	ColDate              = "Fecha"
	ColIncidentType      = "Tipo de Incidente"
	ColType              = "Tipo"
	ColQuadrantFull      = "Cuadrante donde sucedió el hecho"
	ColQuadrant          = "Cuadrante"
	ColOfficer           = "Oficial a cargo"
	ColOfficerAlt        = "Oficial a cargo1"
	ColUndocumented      = "Cantidad de Indocumentados detenidos"
	ColNarrative         = "Narrativa del Incidente"
	ColActions           = "Acciones Tomadas"
	ColTransitIncident   = "Incidentes relacionados a tránsito"
	ColMigrationIncident = "Incidentes de migración"
	ColSecurityIncident  = "Incidentes de seguridad policial"
	ColPersonRole        = "Rol de la Persona"
	ColPersonName        = "Nombre Completo"
	ColEvidence          = "Evidencia Visual"
)

// DateColumns lists the headers that may carry the incident timestamp.
var DateColumns = []string{ColStartTime, ColDate}

const (
	QuadrantB1 = "B1"
	QuadrantB2 = "B2"
	QuadrantB3 = "B3"
	QuadrantB4 = "B4"

	OfficerUnspecified = "No especificado"
	TypeOther          = "Otros"
)

// Quadrants is the closed set every incident is bucketed into.
var Quadrants = []string{QuadrantB1, QuadrantB2, QuadrantB3, QuadrantB4}

// Incident is a normalized record. Values are never mutated after normalization.
type Incident struct {
	ID                string     `json:"id"`
	Date              *time.Time `json:"date,omitempty"`
	DateText          string     `json:"date_text,omitempty"`
	Type              string     `json:"type"`
	Quadrant          string     `json:"quadrant"`
	Officer           string     `json:"officer"`
	Undocumented      int        `json:"undocumented"`
	Narrative         string     `json:"narrative"`
	Actions           string     `json:"actions"`
	TransitIncident   string     `json:"transit_incident,omitempty"`
	MigrationIncident string     `json:"migration_incident,omitempty"`
	SecurityIncident  string     `json:"security_incident,omitempty"`
	PersonRole        string     `json:"person_role,omitempty"`
	PersonName        string     `json:"person_name,omitempty"`
	Evidence          string     `json:"evidence,omitempty"`
	Raw               RawRow     `json:"raw_data,omitempty"`
}

// HasDate reports whether the incident takes part in date-based filters and groupings.
func (i Incident) HasDate() bool {
	return i.Date != nil
}
