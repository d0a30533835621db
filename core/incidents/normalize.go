package incidents

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// typeKeywords is checked in order; the first keyword contained in the
// lowercased text decides the canonical incident type.
var typeKeywords = []struct {
	keyword   string
	canonical string
}{
	{"migracion", "Migración"},
	{"migración", "Migración"},
	{"digesett", "DIGESETT"},
	{"inacif", "INACIF"},
	{"dicrim", "DICRIM"},
	{"dncd", "DNCD"},
	{"policia", "Policía Nacional"},
	{"seguridad", "Seguridad"},
}

// quadrantRedistribution maps known free-text locations onto the four quadrants.
// Ambiguous and multi-zone values collapse into the first listed quadrant, or B1.
var quadrantRedistribution = map[string]string{
	"TODA LA CIUDAD":                    QuadrantB1,
	"EN LAS PUERTAS PRINCIPALES DE CJB": QuadrantB1,
	"PUERTAS PRINCIPALES":               QuadrantB1,
	"GARITA":                            QuadrantB1,
	"ENTRADA":                           QuadrantB1,

	"GAVIOTA #3": QuadrantB3,
	"GAVIOTA":    QuadrantB3,
	"GAVIOTA 3":  QuadrantB3,

	"B1 Y B3": QuadrantB1,
	"B1 Y B2": QuadrantB1,
	"B2 Y B3": QuadrantB2,
	"B3 Y B4": QuadrantB3,
	"B1, B3":  QuadrantB1,

	"NO ESPECIFICADO": QuadrantB1,
	"N/A":             QuadrantB1,
}

// NormalizeIncidentType maps free text onto the controlled vocabulary.
// Unmatched text passes through trimmed; empty text becomes "Otros".
func NormalizeIncidentType(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" {
		return TypeOther
	}
	lower := strings.ToLower(t)
	for _, kw := range typeKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.canonical
		}
	}
	return t
}

// NormalizeQuadrant is total: every input lands in exactly one of B1..B4.
func NormalizeQuadrant(raw string) string {
	q := strings.ToUpper(strings.TrimSpace(raw))
	if q == "" || q == "0" {
		return QuadrantB1
	}
	for _, code := range Quadrants {
		if q == code {
			return code
		}
	}
	if mapped, ok := quadrantRedistribution[q]; ok {
		return mapped
	}
	for _, code := range Quadrants {
		if strings.Contains(q, code) {
			return code
		}
	}
	return QuadrantB1
}

func NormalizeOfficer(raw string) string {
	o := strings.TrimSpace(raw)
	if o == "" || o == "0" {
		return OfficerUnspecified
	}
	return o
}

// ParseUndocumented reads the leading integer of raw ("3 personas" -> 3).
// Non-numeric, missing and negative values count as zero.
func ParseUndocumented(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	for i, r := range s {
		if i == 0 && (r == '+' || r == '-') {
			end = i + 1
			continue
		}
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			break
		}
		end = i + 1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Normalizer turns loosely-typed rows into Incidents. All defaulting lives here.
type Normalizer struct {
	loc *time.Location
}

func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{loc: loc}
}

// Normalize never fails: every field has a fallback. Ids are unique per call.
func (n *Normalizer) Normalize(rows []RawRow) []Incident {
	if n == nil {
		n = NewNormalizer(nil)
	}
	out := make([]Incident, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for idx, row := range rows {
		inc := n.NormalizeRow(row, idx)
		for {
			if _, dup := seen[inc.ID]; !dup {
				break
			}
			inc.ID = inc.ID + "-" + strconv.Itoa(idx+1)
		}
		seen[inc.ID] = struct{}{}
		out = append(out, inc)
	}
	return out
}

// NormalizeRow normalizes a single row; idx is its zero-based position in the load.
func (n *Normalizer) NormalizeRow(row RawRow, idx int) Incident {
	if row == nil {
		row = RawRow{}
	}
	dateText := row.Get(DateColumns...)
	id := row.Get(ColID)
	if id == "" {
		id = strconv.Itoa(idx + 1)
	}
	return Incident{
		ID:                id,
		Date:              ParseDate(dateText, n.loc),
		DateText:          dateText,
		Type:              NormalizeIncidentType(row.Get(ColIncidentType, ColType)),
		Quadrant:          NormalizeQuadrant(row.Get(ColQuadrantFull, ColQuadrant)),
		Officer:           NormalizeOfficer(row.Get(ColOfficer, ColOfficerAlt)),
		Undocumented:      ParseUndocumented(row.Get(ColUndocumented)),
		Narrative:         row.Get(ColNarrative),
		Actions:           row.Get(ColActions),
		TransitIncident:   row.Get(ColTransitIncident),
		MigrationIncident: row.Get(ColMigrationIncident),
		SecurityIncident:  row.Get(ColSecurityIncident),
		PersonRole:        row.Get(ColPersonRole),
		PersonName:        row.Get(ColPersonName),
		Evidence:          row.Get(ColEvidence),
		Raw:               row,
	}
}

// Normalize is a convenience wrapper using the local timezone.
func Normalize(rows []RawRow) []Incident {
	return NewNormalizer(nil).Normalize(rows)
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}
