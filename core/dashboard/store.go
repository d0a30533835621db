package dashboard

import (
	"time"

	"cjb-incidents/core/incidents"
)

// IncidentStore owns the loaded incident set, both filter layers and the
// current filtered snapshot. It is single-owner and not safe for concurrent
// use; callers serialize access the same way the UI event loop does.
type IncidentStore struct {
	loc      *time.Location
	raw      []incidents.Incident
	filtered []incidents.Incident
	cross    CrossFilters
	dropdown DropdownFilters

	subs   []subscription
	nextID int
}

// NewIncidentStore builds an empty store; loc anchors date-filter inputs.
func NewIncidentStore(loc *time.Location) *IncidentStore {
	if loc == nil {
		loc = time.Local
	}
	return &IncidentStore{
		loc:      loc,
		raw:      []incidents.Incident{},
		filtered: []incidents.Incident{},
		cross:    CrossFilters{},
	}
}

// Subscribe registers o and returns a function that removes it.
func (s *IncidentStore) Subscribe(o Observer) func() {
	if o == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, observer: o})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *IncidentStore) emit(kind EventKind) {
	ev := Event{Kind: kind, Total: len(s.raw), Filtered: len(s.filtered), Active: s.ActiveFilters()}
	subs := append([]subscription(nil), s.subs...)
	for _, sub := range subs {
		sub.observer.OnEvent(ev)
	}
}

// Load replaces the incident set wholesale and resets every filter.
func (s *IncidentStore) Load(items []incidents.Incident) {
	s.raw = append([]incidents.Incident(nil), items...)
	s.resetFilters()
	s.emit(DataLoaded)
}

// Reset drops the loaded data, as when the operator starts over with a new file.
func (s *IncidentStore) Reset() {
	s.raw = []incidents.Incident{}
	s.resetFilters()
	s.emit(DataReset)
}

func (s *IncidentStore) resetFilters() {
	s.cross = CrossFilters{}
	s.dropdown = DropdownFilters{}
	s.filtered = append([]incidents.Incident{}, s.raw...)
}

// ApplyFilters recomputes and stores the filtered set: dropdown predicates
// first, then cross-filters. Order of the full set is preserved.
func (s *IncidentStore) ApplyFilters() []incidents.Incident {
	out := make([]incidents.Incident, 0, len(s.raw))
	for _, inc := range s.raw {
		if Matches(inc, s.dropdown, s.cross) {
			out = append(out, inc)
		}
	}
	s.filtered = out
	return s.Filtered()
}

// SetCrossFilter toggles dim: the current value clears it, any other valid value
// replaces it, and an invalid value leaves the dimension inactive.
func (s *IncidentStore) SetCrossFilter(dim CrossDimension, value FilterValue) {
	if !dim.known() {
		return
	}
	if cur, ok := s.cross[dim]; ok && cur == value {
		delete(s.cross, dim)
	} else if dim.valid(value) {
		s.cross[dim] = value
	} else {
		delete(s.cross, dim)
	}
	s.ApplyFilters()
	s.emit(FiltersChanged)
}

// RemoveCrossFilter clears one chip without toggle semantics.
func (s *IncidentStore) RemoveCrossFilter(dim CrossDimension) {
	if _, ok := s.cross[dim]; !ok {
		return
	}
	delete(s.cross, dim)
	s.ApplyFilters()
	s.emit(FiltersChanged)
}

// SetDropdownFilter assigns dim directly. Empty values and unparsable dates
// deactivate the filter.
func (s *IncidentStore) SetDropdownFilter(dim DropdownDimension, value string) {
	switch dim {
	case DropdownDateFrom:
		s.dropdown.DateFrom = parseFilterDate(value, s.loc)
	case DropdownDateTo:
		s.dropdown.DateTo = parseFilterDate(value, s.loc)
	case DropdownType:
		s.dropdown.Type = value
	case DropdownQuadrant:
		s.dropdown.Quadrant = value
	case DropdownOfficer:
		s.dropdown.Officer = value
	case DropdownSearch:
		s.dropdown.Search = value
	default:
		return
	}
	s.ApplyFilters()
	s.emit(FiltersChanged)
}

// ClearAllFilters empties both layers and restores the full set.
func (s *IncidentStore) ClearAllFilters() {
	s.resetFilters()
	s.emit(FiltersCleared)
}

func (s *IncidentStore) ActiveFilters() ActiveFilters {
	return activeFilters(s.cross, s.dropdown)
}

// CrossFilter returns the active value of dim, if any.
func (s *IncidentStore) CrossFilter(dim CrossDimension) (FilterValue, bool) {
	return s.cross.Get(dim)
}

func (s *IncidentStore) DropdownFilters() DropdownFilters {
	return s.dropdown
}

// All returns a copy of the full loaded set.
func (s *IncidentStore) All() []incidents.Incident {
	return append([]incidents.Incident{}, s.raw...)
}

// Filtered returns a copy of the last computed filtered set.
func (s *IncidentStore) Filtered() []incidents.Incident {
	return append([]incidents.Incident{}, s.filtered...)
}

func (s *IncidentStore) Len() int { return len(s.raw) }

// FindIncident looks id up in the full set regardless of filters.
func (s *IncidentStore) FindIncident(id string) (incidents.Incident, bool) {
	for _, inc := range s.raw {
		if inc.ID == id {
			return inc, true
		}
	}
	return incidents.Incident{}, false
}

func (s *IncidentStore) GroupBy(field Field) []Group { return GroupBy(s.filtered, field) }
func (s *IncidentStore) GroupByHour() [24]int        { return GroupByHour(s.filtered) }
func (s *IncidentStore) GroupByDayOfWeek() [7]int    { return GroupByDayOfWeek(s.filtered) }
func (s *IncidentStore) GroupByPeriod(p Period) []Group {
	return GroupByPeriod(s.filtered, p)
}
func (s *IncidentStore) Aggregations() Aggregations { return Aggregate(s.filtered) }
