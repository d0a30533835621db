package dashboard

import (
	"reflect"
	"testing"
	"time"

	"cjb-incidents/core/incidents"
)

func TestActionCounts(t *testing.T) {
	items := []incidents.Incident{
		{Actions: "Arresto del conductor; Multa"},
		{Actions: "Multa, Advertencia verbal"},
		{Actions: "multa"},
		{Actions: "Patrullaje, ok"},
		{Actions: "Entrega a Migración"},
	}
	got := ActionCounts(items, 0)
	want := []Group{{"Multa", 3}, {"Arresto/Detención", 1}, {"Advertencia", 1}, {"Entrega Migración", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got := ActionCounts(items, 2); len(got) != 2 || got[1].Key != "Arresto/Detención" {
		t.Fatalf("limit not applied: %+v", got)
	}
}

func TestUndocumentedByQuadrant(t *testing.T) {
	items := []incidents.Incident{
		{Quadrant: "B3", Undocumented: 2},
		{Quadrant: "B1", Undocumented: 1},
		{Quadrant: "B3", Undocumented: 5},
		{Quadrant: "B2"},
	}
	got := UndocumentedByQuadrant(items)
	want := []Group{{"B1", 1}, {"B3", 7}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestCategoryCounts(t *testing.T) {
	items := []incidents.Incident{
		{Type: "Migración"},
		{Type: "Accidente DIGESETT"},
		{Type: "Migración irregular"},
		{Type: "Robo"},
	}
	got := CategoryCounts(items)
	want := []Group{{"migration", 2}, {"transit", 1}, {"other", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got := CategoryCounts(nil); len(got) != 0 {
		t.Fatalf("expected no groups, got %+v", got)
	}
}

func TestMonthlyCountsAndHeatmap(t *testing.T) {
	items := scenarioIncidents()
	items = append(items, incidents.Incident{})
	months := MonthlyCounts(items)
	if months[time.July-1] != 3 {
		t.Fatalf("unexpected months %v", months)
	}
	grid := Heatmap(items)
	if grid[time.Tuesday][10] != 1 || grid[time.Tuesday][14] != 1 || grid[time.Wednesday][9] != 1 {
		t.Fatalf("unexpected heatmap")
	}
}

func TestOfficerPerformance(t *testing.T) {
	items := []incidents.Incident{
		{Officer: "Pérez", Undocumented: 1},
		{Officer: "Gómez", Undocumented: 4},
		{Officer: incidents.OfficerUnspecified, Undocumented: 9},
		{Officer: "Pérez", Undocumented: 3},
		{Officer: "Díaz"},
	}
	got := OfficerPerformance(items, 15)
	want := []OfficerStats{
		{Officer: "Pérez", Incidents: 2, Undocumented: 4},
		{Officer: "Gómez", Incidents: 1, Undocumented: 4},
		{Officer: "Díaz", Incidents: 1, Undocumented: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if len(OfficerPerformance(items, 1)) != 1 {
		t.Fatalf("limit not applied")
	}
}

func TestDateBounds(t *testing.T) {
	if _, _, ok := DateBounds([]incidents.Incident{{}}); ok {
		t.Fatalf("expected no bounds")
	}
	lo, hi, ok := DateBounds(append(scenarioIncidents(), incidents.Incident{}))
	if !ok || !lo.Equal(*at(2025, time.July, 1, 10, 0)) || !hi.Equal(*at(2025, time.July, 2, 9, 0)) {
		t.Fatalf("unexpected bounds %s %s", lo, hi)
	}
}

func TestFilterOptions(t *testing.T) {
	opts := FilterOptions(scenarioIncidents())
	if !reflect.DeepEqual(opts.Quadrants, []string{"B1", "B2"}) {
		t.Fatalf("quadrants %v", opts.Quadrants)
	}
	if !reflect.DeepEqual(opts.Types, []string{"DIGESETT", "Migración"}) {
		t.Fatalf("types %v", opts.Types)
	}
}
