package incidents

import "strings"

// Keyword heuristics over free text. Matching is case-insensitive substring search.

func containsAny(text string, keywords ...string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsAccident: a DIGESETT incident, or "accidente" in the transit field or narrative.
func IsAccident(i Incident) bool {
	return containsAny(i.Type, "digesett") ||
		containsAny(i.TransitIncident, "accidente") ||
		containsAny(i.Narrative, "accidente")
}

func IsArrest(i Incident) bool {
	return containsAny(i.Actions, "arresto", "detención", "detencion")
}

func IsClosure(i Incident) bool {
	return containsAny(i.Actions, "clausura") || containsAny(i.Narrative, "clausura")
}

// actionLabels is checked in order; the first match names the action bucket.
var actionLabels = []struct {
	keywords []string
	label    string
}{
	{[]string{"arresto", "detención"}, "Arresto/Detención"},
	{[]string{"advertencia"}, "Advertencia"},
	{[]string{"asistencia"}, "Asistencia"},
	{[]string{"clausura"}, "Clausura"},
	{[]string{"migración"}, "Entrega Migración"},
	{[]string{"policía"}, "Entrega PN"},
	{[]string{"digesett"}, "Ref. DIGESETT"},
	{[]string{"multa"}, "Multa"},
}

// NormalizeAction buckets one action phrase; unknown phrases return "".
func NormalizeAction(text string) string {
	for _, a := range actionLabels {
		if containsAny(text, a.keywords...) {
			return a.label
		}
	}
	return ""
}

// SplitActions breaks the free-text actions field into phrases longer than
// three characters.
func SplitActions(actions string) []string {
	parts := strings.FieldsFunc(actions, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len([]rune(p)) > 3 {
			out = append(out, p)
		}
	}
	return out
}

// TypeCategory groups a type into the badge families shown in tables.
func TypeCategory(incidentType string) string {
	t := strings.ToLower(incidentType)
	switch {
	case t == "":
		return "other"
	case strings.Contains(t, "migra"):
		return "migration"
	case strings.Contains(t, "digesett"):
		return "transit"
	case strings.Contains(t, "seguridad"), strings.Contains(t, "policia"):
		return "security"
	default:
		return "other"
	}
}
