package dashboard

import (
	"strconv"
	"strings"
	"time"

	"cjb-incidents/core/incidents"
)

// CrossDimension names a toggleable chart-click filter.
type CrossDimension string

const (
	CrossType      CrossDimension = "type"
	CrossQuadrant  CrossDimension = "quadrant"
	CrossOfficer   CrossDimension = "officer"
	CrossHour      CrossDimension = "hour"
	CrossDayOfWeek CrossDimension = "dayOfWeek"
	CrossMonth     CrossDimension = "month"
	CrossAction    CrossDimension = "action"
)

// CrossDimensions is the fixed evaluation and reporting order.
var CrossDimensions = []CrossDimension{CrossType, CrossQuadrant, CrossOfficer, CrossHour, CrossDayOfWeek, CrossMonth, CrossAction}

func (d CrossDimension) numeric() bool {
	return d == CrossHour || d == CrossDayOfWeek || d == CrossMonth
}

func (d CrossDimension) known() bool {
	for _, k := range CrossDimensions {
		if k == d {
			return true
		}
	}
	return false
}

// DropdownDimension names a directly-set form filter.
type DropdownDimension string

const (
	DropdownDateFrom DropdownDimension = "dateFrom"
	DropdownDateTo   DropdownDimension = "dateTo"
	DropdownType     DropdownDimension = "type"
	DropdownQuadrant DropdownDimension = "quadrant"
	DropdownOfficer  DropdownDimension = "officer"
	DropdownSearch   DropdownDimension = "search"
)

var DropdownDimensions = []DropdownDimension{DropdownDateFrom, DropdownDateTo, DropdownType, DropdownQuadrant, DropdownOfficer, DropdownSearch}

// FilterValue is a cross-filter scalar: either text or an integer. The zero
// integer is a real value; an unset dimension is simply absent.
type FilterValue struct {
	text    string
	num     int
	numeric bool
}

func StringValue(s string) FilterValue { return FilterValue{text: s} }
func IntValue(n int) FilterValue       { return FilterValue{num: n, numeric: true} }

func (v FilterValue) Int() (int, bool) { return v.num, v.numeric }

func (v FilterValue) String() string {
	if v.numeric {
		return strconv.Itoa(v.num)
	}
	return v.text
}

// ParseFilterValue reads a query-string value for dim: numeric dimensions
// accept integers only.
func ParseFilterValue(dim CrossDimension, raw string) (FilterValue, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FilterValue{}, false
	}
	if dim.numeric() {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return FilterValue{}, false
		}
		return IntValue(n), true
	}
	return StringValue(raw), true
}

// valid reports whether v can be an active value of dim.
func (d CrossDimension) valid(v FilterValue) bool {
	n, isNum := v.Int()
	switch d {
	case CrossHour:
		return isNum && n >= 0 && n <= 23
	case CrossDayOfWeek:
		return isNum && n >= 0 && n <= 6
	case CrossMonth:
		return isNum && n >= 0 && n <= 11
	case CrossType, CrossQuadrant, CrossOfficer, CrossAction:
		return !isNum && v.text != ""
	}
	return false
}

// CrossFilters holds the active chart filters; absent keys are inactive.
type CrossFilters map[CrossDimension]FilterValue

func (c CrossFilters) Get(d CrossDimension) (FilterValue, bool) {
	v, ok := c[d]
	return v, ok
}

// DropdownFilters holds the form filters. Nil dates and empty strings are inactive.
type DropdownFilters struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Type     string
	Quadrant string
	Officer  string
	Search   string
}

// dateToBound returns DateTo at 23:59:59 of the same calendar day.
func (f DropdownFilters) dateToBound() *time.Time {
	if f.DateTo == nil {
		return nil
	}
	d := *f.DateTo
	end := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
	return &end
}

func (f DropdownFilters) value(d DropdownDimension) string {
	switch d {
	case DropdownDateFrom:
		if f.DateFrom != nil {
			return f.DateFrom.Format(dayLayout)
		}
	case DropdownDateTo:
		if f.DateTo != nil {
			return f.DateTo.Format(dayLayout)
		}
	case DropdownType:
		return f.Type
	case DropdownQuadrant:
		return f.Quadrant
	case DropdownOfficer:
		return f.Officer
	case DropdownSearch:
		return f.Search
	}
	return ""
}

const dayLayout = "2006-01-02"

// parseFilterDate reads date inputs; the result is midnight in loc.
func parseFilterDate(raw string, loc *time.Location) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, err := time.ParseInLocation(dayLayout, raw, loc); err == nil {
		return &t
	}
	if t := incidents.ParseDate(raw, loc); t != nil {
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		return &day
	}
	return nil
}

// ActiveFilter is one chip in the active-filters bar.
type ActiveFilter struct {
	Layer string `json:"layer"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

const (
	LayerCross    = "cross"
	LayerDropdown = "dropdown"
)

// ActiveFilters is the count plus the itemized list; search is never counted.
type ActiveFilters struct {
	Count int            `json:"count"`
	Items []ActiveFilter `json:"items"`
}

func activeFilters(cross CrossFilters, dd DropdownFilters) ActiveFilters {
	out := ActiveFilters{Items: []ActiveFilter{}}
	for _, d := range CrossDimensions {
		if v, ok := cross[d]; ok {
			out.Items = append(out.Items, ActiveFilter{Layer: LayerCross, Key: string(d), Value: v.String()})
		}
	}
	for _, d := range DropdownDimensions {
		if d == DropdownSearch {
			continue
		}
		if v := dd.value(d); v != "" {
			out.Items = append(out.Items, ActiveFilter{Layer: LayerDropdown, Key: string(d), Value: v})
		}
	}
	out.Count = len(out.Items)
	return out
}

// Matches reports whether inc satisfies every active predicate of both layers.
func Matches(inc incidents.Incident, dd DropdownFilters, cross CrossFilters) bool {
	return matchesDropdown(inc, dd) && matchesCross(inc, cross)
}

func matchesDropdown(inc incidents.Incident, f DropdownFilters) bool {
	if f.DateFrom != nil {
		if inc.Date == nil || inc.Date.Before(*f.DateFrom) {
			return false
		}
	}
	if end := f.dateToBound(); end != nil {
		if inc.Date == nil || inc.Date.After(*end) {
			return false
		}
	}
	if f.Type != "" && inc.Type != f.Type {
		return false
	}
	if f.Quadrant != "" && inc.Quadrant != f.Quadrant {
		return false
	}
	if f.Officer != "" && inc.Officer != f.Officer {
		return false
	}
	if f.Search != "" {
		haystack := strings.ToLower(strings.Join([]string{
			inc.ID, inc.Type, inc.Quadrant, inc.Officer, inc.Narrative, inc.Actions, inc.PersonName,
		}, " "))
		if !strings.Contains(haystack, strings.ToLower(f.Search)) {
			return false
		}
	}
	return true
}

func matchesCross(inc incidents.Incident, cross CrossFilters) bool {
	for _, d := range CrossDimensions {
		v, ok := cross[d]
		if !ok {
			continue
		}
		n, _ := v.Int()
		switch d {
		case CrossType:
			if inc.Type != v.text {
				return false
			}
		case CrossQuadrant:
			if inc.Quadrant != v.text {
				return false
			}
		case CrossOfficer:
			if inc.Officer != v.text {
				return false
			}
		case CrossHour:
			if inc.Date == nil || inc.Date.Hour() != n {
				return false
			}
		case CrossDayOfWeek:
			if inc.Date == nil || int(inc.Date.Weekday()) != n {
				return false
			}
		case CrossMonth:
			if inc.Date == nil || monthIndex(*inc.Date) != n {
				return false
			}
		case CrossAction:
			if !strings.Contains(strings.ToLower(inc.Actions), strings.ToLower(v.text)) {
				return false
			}
		}
	}
	return true
}

// monthIndex is the zero-based month (January = 0) used by the month
// cross-filter and the monthly chart.
func monthIndex(t time.Time) int { return int(t.Month()) - 1 }
