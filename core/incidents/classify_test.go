package incidents

import (
	"reflect"
	"testing"
)

func TestIsAccident(t *testing.T) {
	cases := []struct {
		name string
		inc  Incident
		want bool
	}{
		{"digesett type", Incident{Type: "DIGESETT"}, true},
		{"transit field", Incident{TransitIncident: "Accidente de tránsito leve"}, true},
		{"narrative", Incident{Narrative: "Se reporta un ACCIDENTE en la avenida"}, true},
		{"unrelated", Incident{Type: "Migración", Narrative: "control rutinario"}, false},
		{"empty", Incident{}, false},
	}
	for _, tc := range cases {
		if got := IsAccident(tc.inc); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsArrest(t *testing.T) {
	for _, actions := range []string{"Arresto del sujeto", "DETENCIÓN preventiva", "detencion"} {
		if !IsArrest(Incident{Actions: actions}) {
			t.Fatalf("expected arrest for %q", actions)
		}
	}
	if IsArrest(Incident{Actions: "Advertencia verbal", Narrative: "arresto"}) {
		t.Fatalf("narrative must not count as arrest")
	}
}

func TestIsClosure(t *testing.T) {
	if !IsClosure(Incident{Actions: "Clausura del local"}) {
		t.Fatalf("expected closure from actions")
	}
	if !IsClosure(Incident{Narrative: "se procedió a la CLAUSURA"}) {
		t.Fatalf("expected closure from narrative")
	}
	if IsClosure(Incident{Actions: "Multa"}) {
		t.Fatalf("unexpected closure")
	}
}

func TestNormalizeAction(t *testing.T) {
	cases := map[string]string{
		"Arresto del conductor":       "Arresto/Detención",
		"detención":                   "Arresto/Detención",
		"detencion":                   "",
		"Advertencia verbal":          "Advertencia",
		"Asistencia médica":           "Asistencia",
		"Clausura temporal":           "Clausura",
		"Entrega a Migración":         "Entrega Migración",
		"Entrega a la Policía":        "Entrega PN",
		"Referido a DIGESETT":         "Ref. DIGESETT",
		"Multa de tránsito":           "Multa",
		"Patrullaje":                  "",
		"arresto y entrega migración": "Arresto/Detención",
	}
	for in, want := range cases {
		if got := NormalizeAction(in); got != want {
			t.Fatalf("NormalizeAction(%q) = %q want %q", in, got, want)
		}
	}
}

func TestSplitActions(t *testing.T) {
	got := SplitActions("Arresto; Multa, ok ,  Entrega a Migración;;")
	want := []string{"Arresto", "Multa", "Entrega a Migración"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
	if len(SplitActions("")) != 0 {
		t.Fatalf("expected no actions")
	}
}

func TestTypeCategory(t *testing.T) {
	cases := map[string]string{
		"Migración":        "migration",
		"DIGESETT":         "transit",
		"Seguridad":        "security",
		"policia auxiliar": "security",
		"Otros":            "other",
		"":                 "other",
	}
	for in, want := range cases {
		if got := TypeCategory(in); got != want {
			t.Fatalf("TypeCategory(%q) = %q want %q", in, got, want)
		}
	}
}
