package dashboard

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"cjb-incidents/core/incidents"
)

func at(y int, m time.Month, d, h, min int) *time.Time {
	t := time.Date(y, m, d, h, min, 0, 0, time.UTC)
	return &t
}

func scenarioIncidents() []incidents.Incident {
	return []incidents.Incident{
		{ID: "1", Quadrant: "B1", Type: "Migración", Officer: "Pérez", Date: at(2025, time.July, 1, 10, 0)},
		{ID: "2", Quadrant: "B2", Type: "DIGESETT", Officer: "Gómez", Date: at(2025, time.July, 1, 14, 0), Actions: "Multa"},
		{ID: "3", Quadrant: "B1", Type: "Migración", Officer: "Pérez", Date: at(2025, time.July, 2, 9, 0), Undocumented: 3},
	}
}

func ids(items []incidents.Incident) []string {
	out := make([]string, 0, len(items))
	for _, inc := range items {
		out = append(out, inc.ID)
	}
	return out
}

func loadedStore(items []incidents.Incident) *IncidentStore {
	s := NewIncidentStore(time.UTC)
	s.Load(items)
	return s
}

func TestConcreteScenario(t *testing.T) {
	s := loadedStore(scenarioIncidents())

	got := s.GroupBy(FieldQuadrant)
	want := []Group{{Key: "B1", Count: 2}, {Key: "B2", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("groupBy quadrant: got %+v want %+v", got, want)
	}

	s.SetCrossFilter(CrossQuadrant, StringValue("B1"))
	if got := ids(s.ApplyFilters()); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Fatalf("B1 filter: got %v", got)
	}

	s.SetCrossFilter(CrossQuadrant, StringValue("B1"))
	if got := ids(s.Filtered()); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("toggle off: got %v", got)
	}
	if _, ok := s.CrossFilter(CrossQuadrant); ok {
		t.Fatalf("quadrant filter should be cleared")
	}
}

func TestSearchMatchesTypeCaseInsensitive(t *testing.T) {
	s := loadedStore(scenarioIncidents())
	s.SetDropdownFilter(DropdownSearch, "digesett")
	if got := ids(s.Filtered()); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("search: got %v", got)
	}
	if n := s.ActiveFilters().Count; n != 0 {
		t.Fatalf("search must not count as active filter, got %d", n)
	}
}

func TestApplyFiltersIdempotent(t *testing.T) {
	s := loadedStore(syntheticIncidents(50))
	s.SetDropdownFilter(DropdownType, "Migración")
	s.SetCrossFilter(CrossHour, IntValue(10))
	first := s.ApplyFilters()
	second := s.ApplyFilters()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("applyFilters not idempotent")
	}
}

func TestToggleLawRestoresPreviousState(t *testing.T) {
	s := loadedStore(syntheticIncidents(50))
	s.SetDropdownFilter(DropdownQuadrant, "B2")
	before := ids(s.Filtered())

	for _, tc := range []struct {
		dim CrossDimension
		val FilterValue
	}{
		{CrossType, StringValue("DIGESETT")},
		{CrossOfficer, StringValue("Officer 3")},
		{CrossHour, IntValue(0)},
		{CrossDayOfWeek, IntValue(0)},
		{CrossMonth, IntValue(3)},
		{CrossAction, StringValue("arresto")},
	} {
		s.SetCrossFilter(tc.dim, tc.val)
		if v, ok := s.CrossFilter(tc.dim); !ok || v != tc.val {
			t.Fatalf("%s: expected active filter %v", tc.dim, tc.val)
		}
		s.SetCrossFilter(tc.dim, tc.val)
		if _, ok := s.CrossFilter(tc.dim); ok {
			t.Fatalf("%s: expected cleared filter", tc.dim)
		}
		if got := ids(s.Filtered()); !reflect.DeepEqual(got, before) {
			t.Fatalf("%s: filtered set not restored", tc.dim)
		}
	}
}

func TestCrossFilterReplacesValue(t *testing.T) {
	s := loadedStore(scenarioIncidents())
	s.SetCrossFilter(CrossQuadrant, StringValue("B1"))
	s.SetCrossFilter(CrossQuadrant, StringValue("B2"))
	if got := ids(s.Filtered()); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("got %v", got)
	}
}

func TestMonthZeroSelectsJanuary(t *testing.T) {
	items := []incidents.Incident{
		{ID: "1", Quadrant: "B1", Date: at(2025, time.January, 10, 9, 0)},
		{ID: "2", Quadrant: "B1", Date: at(2025, time.July, 10, 9, 0)},
	}
	s := loadedStore(items)
	s.SetCrossFilter(CrossMonth, IntValue(0))
	if v, ok := s.CrossFilter(CrossMonth); !ok || v != IntValue(0) {
		t.Fatalf("month 0 must be an active filter")
	}
	if got := ids(s.Filtered()); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("month 0: got %v", got)
	}
	s.SetCrossFilter(CrossMonth, IntValue(6))
	if got := ids(s.Filtered()); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("month 6: got %v", got)
	}
	if months := MonthlyCounts(items); months[0] != 1 || months[6] != 1 {
		t.Fatalf("monthly buckets out of line with the filter: %v", months)
	}
}

func TestHourZeroIsDistinctFromUnset(t *testing.T) {
	items := []incidents.Incident{
		{ID: "midnight", Quadrant: "B1", Date: at(2025, time.March, 3, 0, 15)},
		{ID: "noon", Quadrant: "B1", Date: at(2025, time.March, 3, 12, 0)},
		{ID: "undated", Quadrant: "B1"},
	}
	s := loadedStore(items)
	s.SetCrossFilter(CrossHour, IntValue(0))
	if got := ids(s.Filtered()); !reflect.DeepEqual(got, []string{"midnight"}) {
		t.Fatalf("hour 0: got %v", got)
	}
	af := s.ActiveFilters()
	if af.Count != 1 || af.Items[0].Key != "hour" || af.Items[0].Value != "0" {
		t.Fatalf("unexpected active filters %+v", af)
	}
}

func TestInvalidCrossValueDeactivates(t *testing.T) {
	s := loadedStore(scenarioIncidents())
	s.SetCrossFilter(CrossHour, IntValue(10))
	s.SetCrossFilter(CrossHour, IntValue(24))
	if _, ok := s.CrossFilter(CrossHour); ok {
		t.Fatalf("out of range hour must deactivate the filter")
	}
	s.SetCrossFilter(CrossMonth, IntValue(12))
	s.SetCrossFilter(CrossType, IntValue(3))
	s.SetCrossFilter(CrossOfficer, StringValue(""))
	if n := s.ActiveFilters().Count; n != 0 {
		t.Fatalf("expected no active filters, got %d", n)
	}
	if len(s.Filtered()) != 3 {
		t.Fatalf("expected all incidents")
	}
	s.SetCrossFilter("nope", StringValue("x"))
	if len(s.Filtered()) != 3 {
		t.Fatalf("unknown dimension must be ignored")
	}
}

func TestDateRangeIncludesWholeEndDayAndSkipsUndated(t *testing.T) {
	items := append(scenarioIncidents(), incidents.Incident{ID: "4", Quadrant: "B3"})
	s := loadedStore(items)
	s.SetDropdownFilter(DropdownDateFrom, "2025-07-02")
	s.SetDropdownFilter(DropdownDateTo, "2025-07-02")
	if got := ids(s.Filtered()); !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("date range: got %v", got)
	}
	s.SetDropdownFilter(DropdownDateFrom, "")
	s.SetDropdownFilter(DropdownDateTo, "1/7/2025")
	if got := ids(s.Filtered()); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("day-first dateTo: got %v", got)
	}
	s.SetDropdownFilter(DropdownDateTo, "garbage")
	if got := len(s.Filtered()); got != 4 {
		t.Fatalf("unparsable date must deactivate the filter, got %d", got)
	}
}

func TestClearAllFilters(t *testing.T) {
	s := loadedStore(scenarioIncidents())
	s.SetCrossFilter(CrossType, StringValue("DIGESETT"))
	s.SetDropdownFilter(DropdownOfficer, "Gómez")
	s.SetDropdownFilter(DropdownSearch, "multa")
	if n := s.ActiveFilters().Count; n != 2 {
		t.Fatalf("expected 2 active filters, got %d", n)
	}
	s.ClearAllFilters()
	if n := s.ActiveFilters().Count; n != 0 {
		t.Fatalf("expected none, got %d", n)
	}
	if s.DropdownFilters().Search != "" {
		t.Fatalf("search must be cleared")
	}
	if len(s.Filtered()) != 3 {
		t.Fatalf("expected full set")
	}
}

func TestLoadResetsFilters(t *testing.T) {
	s := loadedStore(scenarioIncidents())
	s.SetCrossFilter(CrossQuadrant, StringValue("B2"))
	s.Load(scenarioIncidents()[:2])
	if s.Len() != 2 || len(s.Filtered()) != 2 {
		t.Fatalf("unexpected sizes %d/%d", s.Len(), len(s.Filtered()))
	}
	if s.ActiveFilters().Count != 0 {
		t.Fatalf("load must clear filters")
	}
}

func TestObserverEvents(t *testing.T) {
	s := NewIncidentStore(time.UTC)
	var got []string
	unsubscribe := s.Subscribe(ObserverFunc(func(e Event) {
		got = append(got, fmt.Sprintf("%s:%d/%d", e.Kind, e.Filtered, e.Total))
	}))

	s.Load(scenarioIncidents())
	s.SetCrossFilter(CrossQuadrant, StringValue("B2"))
	s.SetDropdownFilter(DropdownType, "Migración")
	s.ClearAllFilters()
	s.Reset()
	unsubscribe()
	s.Load(scenarioIncidents())

	want := []string{
		"data_loaded:3/3",
		"filters_changed:1/3",
		"filters_changed:0/3",
		"filters_cleared:3/3",
		"data_reset:0/0",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("events: got %v want %v", got, want)
	}
}

func TestFilteredReturnsCopy(t *testing.T) {
	s := loadedStore(scenarioIncidents())
	f := s.Filtered()
	f[0].Quadrant = "B4"
	if s.Filtered()[0].Quadrant != "B1" {
		t.Fatalf("filtered slice leaked internal state")
	}
}

func TestFindIncidentIgnoresFilters(t *testing.T) {
	s := loadedStore(scenarioIncidents())
	s.SetCrossFilter(CrossQuadrant, StringValue("B2"))
	if _, ok := s.FindIncident("3"); !ok {
		t.Fatalf("expected incident 3 in full set")
	}
	if _, ok := s.FindIncident("99"); ok {
		t.Fatalf("unexpected incident")
	}
}

// syntheticIncidents spans every quadrant, several types, officers, hours,
// weekdays and months; every seventh incident is undated.
func syntheticIncidents(n int) []incidents.Incident {
	types := []string{"Migración", "DIGESETT", "Seguridad", "Otros"}
	actions := []string{"Arresto del sujeto", "Advertencia verbal", "Multa; Clausura", "", "Entrega a Migración"}
	out := make([]incidents.Incident, 0, n)
	for i := 0; i < n; i++ {
		inc := incidents.Incident{
			ID:           fmt.Sprint(i + 1),
			Type:         types[i%len(types)],
			Quadrant:     incidents.Quadrants[i%len(incidents.Quadrants)],
			Officer:      fmt.Sprintf("Officer %d", i%6),
			Actions:      actions[i%len(actions)],
			Narrative:    fmt.Sprintf("evento número %d", i),
			Undocumented: i % 3,
		}
		if i%6 == 5 {
			inc.Officer = incidents.OfficerUnspecified
		}
		if i%7 != 6 {
			inc.Date = at(2025, time.Month(1+i%12), 1+i%28, (i*5)%24, 0)
		}
		out = append(out, inc)
	}
	return out
}

type bruteFilter struct {
	from, to                  *time.Time
	typ, quadrant, officer    string
	search                    string
	crossType, crossQuadrant  string
	crossOfficer, crossAction string
	hour, dow, month          *int
}

func (f bruteFilter) keep(inc incidents.Incident) bool {
	if f.from != nil && (inc.Date == nil || inc.Date.Before(*f.from)) {
		return false
	}
	if f.to != nil {
		end := f.to.Add(24*time.Hour - time.Second)
		if inc.Date == nil || inc.Date.After(end) {
			return false
		}
	}
	eq := func(want, got string) bool { return want == "" || want == got }
	if !eq(f.typ, inc.Type) || !eq(f.quadrant, inc.Quadrant) || !eq(f.officer, inc.Officer) {
		return false
	}
	if !eq(f.crossType, inc.Type) || !eq(f.crossQuadrant, inc.Quadrant) || !eq(f.crossOfficer, inc.Officer) {
		return false
	}
	if f.search != "" {
		text := strings.ToLower(inc.ID + " " + inc.Type + " " + inc.Quadrant + " " + inc.Officer + " " + inc.Narrative + " " + inc.Actions + " " + inc.PersonName)
		if !strings.Contains(text, strings.ToLower(f.search)) {
			return false
		}
	}
	if f.crossAction != "" && !strings.Contains(strings.ToLower(inc.Actions), strings.ToLower(f.crossAction)) {
		return false
	}
	if f.hour != nil && (inc.Date == nil || inc.Date.Hour() != *f.hour) {
		return false
	}
	if f.dow != nil && (inc.Date == nil || int(inc.Date.Weekday()) != *f.dow) {
		return false
	}
	if f.month != nil && (inc.Date == nil || int(inc.Date.Month())-1 != *f.month) {
		return false
	}
	return true
}

func (f bruteFilter) apply(s *IncidentStore) {
	if f.from != nil {
		s.SetDropdownFilter(DropdownDateFrom, f.from.Format("2006-01-02"))
	}
	if f.to != nil {
		s.SetDropdownFilter(DropdownDateTo, f.to.Format("2006-01-02"))
	}
	s.SetDropdownFilter(DropdownType, f.typ)
	s.SetDropdownFilter(DropdownQuadrant, f.quadrant)
	s.SetDropdownFilter(DropdownOfficer, f.officer)
	s.SetDropdownFilter(DropdownSearch, f.search)
	if f.crossType != "" {
		s.SetCrossFilter(CrossType, StringValue(f.crossType))
	}
	if f.crossQuadrant != "" {
		s.SetCrossFilter(CrossQuadrant, StringValue(f.crossQuadrant))
	}
	if f.crossOfficer != "" {
		s.SetCrossFilter(CrossOfficer, StringValue(f.crossOfficer))
	}
	if f.crossAction != "" {
		s.SetCrossFilter(CrossAction, StringValue(f.crossAction))
	}
	if f.hour != nil {
		s.SetCrossFilter(CrossHour, IntValue(*f.hour))
	}
	if f.dow != nil {
		s.SetCrossFilter(CrossDayOfWeek, IntValue(*f.dow))
	}
	if f.month != nil {
		s.SetCrossFilter(CrossMonth, IntValue(*f.month))
	}
}

func intp(n int) *int { return &n }

func TestConjunctiveFilteringMatchesBruteForce(t *testing.T) {
	sample := syntheticIncidents(50)
	cases := []bruteFilter{
		{},
		{typ: "Migración"},
		{quadrant: "B3", crossType: "Seguridad"},
		{from: at(2025, time.March, 1, 0, 0), to: at(2025, time.August, 31, 0, 0)},
		{from: at(2025, time.February, 1, 0, 0), crossQuadrant: "B2", hour: intp(10)},
		{officer: "Officer 2", crossAction: "multa"},
		{search: "NÚMERO 1", month: intp(2)},
		{dow: intp(0)},
		{hour: intp(0), crossOfficer: "Officer 0"},
		{typ: "DIGESETT", quadrant: "B2", crossAction: "arresto", month: intp(6)},
		{search: incidents.OfficerUnspecified},
	}
	for i, f := range cases {
		s := loadedStore(sample)
		f.apply(s)
		var want []string
		for _, inc := range sample {
			if f.keep(inc) {
				want = append(want, inc.ID)
			}
		}
		got := ids(s.Filtered())
		if len(want) == 0 {
			want = []string{}
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("case %d: got %v want %v", i, got, want)
		}
		total := 0
		for _, g := range s.GroupBy(FieldQuadrant) {
			total += g.Count
		}
		if total != len(got) {
			t.Fatalf("case %d: groupBy total %d != filtered %d", i, total, len(got))
		}
	}
}
