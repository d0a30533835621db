package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"cjb-incidents/core/incidents"
)

// Field selects the incident attribute GroupBy buckets on.
type Field string

const (
	FieldType       Field = "type"
	FieldQuadrant   Field = "quadrant"
	FieldOfficer    Field = "officer"
	FieldPersonRole Field = "personRole"
)

// ParseField accepts the field names used by the chart layer.
func ParseField(raw string) (Field, bool) {
	switch Field(strings.TrimSpace(raw)) {
	case FieldType:
		return FieldType, true
	case FieldQuadrant:
		return FieldQuadrant, true
	case FieldOfficer:
		return FieldOfficer, true
	case FieldPersonRole:
		return FieldPersonRole, true
	}
	return "", false
}

func (f Field) value(inc incidents.Incident) string {
	var v string
	switch f {
	case FieldType:
		v = inc.Type
	case FieldQuadrant:
		v = inc.Quadrant
	case FieldOfficer:
		v = inc.Officer
	case FieldPersonRole:
		v = inc.PersonRole
	}
	if v == "" {
		return incidents.OfficerUnspecified
	}
	return v
}

// Group is one (key, count) pair.
type Group struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// countInOrder counts keys and returns them in first-encounter order.
func countInOrder(keys []string) []Group {
	idx := map[string]int{}
	var out []Group
	for _, k := range keys {
		if i, ok := idx[k]; ok {
			out[i].Count++
			continue
		}
		idx[k] = len(out)
		out = append(out, Group{Key: k, Count: 1})
	}
	if out == nil {
		out = []Group{}
	}
	return out
}

// sortByCountDesc is stable: ties keep first-encounter order.
func sortByCountDesc(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
}

// GroupBy counts incidents per field value, sorted by count descending;
// ties keep the order in which each value first appeared.
func GroupBy(items []incidents.Incident, field Field) []Group {
	keys := make([]string, 0, len(items))
	for _, inc := range items {
		keys = append(keys, field.value(inc))
	}
	groups := countInOrder(keys)
	sortByCountDesc(groups)
	return groups
}

// GroupByHour is a 24-bucket histogram; undated incidents are skipped.
func GroupByHour(items []incidents.Incident) [24]int {
	var hours [24]int
	for _, inc := range items {
		if inc.Date != nil {
			hours[inc.Date.Hour()]++
		}
	}
	return hours
}

// GroupByDayOfWeek is a 7-bucket histogram, 0 = Sunday.
func GroupByDayOfWeek(items []incidents.Incident) [7]int {
	var days [7]int
	for _, inc := range items {
		if inc.Date != nil {
			days[inc.Date.Weekday()]++
		}
	}
	return days
}

// Period selects the timeline bucket size.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func ParsePeriod(raw string) Period {
	switch Period(strings.ToLower(strings.TrimSpace(raw))) {
	case PeriodWeekly:
		return PeriodWeekly
	case PeriodMonthly:
		return PeriodMonthly
	}
	return PeriodDaily
}

// PeriodKey renders the sortable bucket key: YYYY-MM-DD, YYYY-Sww or YYYY-MM.
func PeriodKey(t time.Time, p Period) string {
	switch p {
	case PeriodWeekly:
		return fmt.Sprintf("%04d-S%02d", t.Year(), WeekNumber(t))
	case PeriodMonthly:
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	}
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// WeekNumber counts weeks from January 1st, shifted by that day's weekday so
// week 1 ends on the first Saturday of the year.
func WeekNumber(t time.Time) int {
	first := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := t.Sub(first).Hours() / 24
	return int(math.Ceil((days + float64(first.Weekday()) + 1) / 7))
}

// GroupByPeriod buckets dated incidents and sorts keys ascending, which is
// chronological because keys are zero-padded.
func GroupByPeriod(items []incidents.Incident, p Period) []Group {
	keys := make([]string, 0, len(items))
	for _, inc := range items {
		if inc.Date != nil {
			keys = append(keys, PeriodKey(*inc.Date, p))
		}
	}
	groups := countInOrder(keys)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

var monthShort = []string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// PeriodLabel renders a bucket key for axis labels (01/07, 2025 S27, Jul 2025).
func PeriodLabel(key string, p Period) string {
	parts := strings.Split(key, "-")
	switch p {
	case PeriodDaily:
		if len(parts) == 3 {
			return parts[2] + "/" + parts[1]
		}
	case PeriodWeekly:
		return strings.Replace(key, "-", " ", 1)
	case PeriodMonthly:
		if len(parts) == 2 {
			var m int
			if _, err := fmt.Sscanf(parts[1], "%d", &m); err == nil && m >= 1 && m <= 12 {
				return monthShort[m-1] + " " + parts[0]
			}
		}
	}
	return key
}

// Aggregations are the KPI tiles.
type Aggregations struct {
	Total        int `json:"total"`
	Undocumented int `json:"undocumented"`
	Accidents    int `json:"accidents"`
	Arrests      int `json:"arrests"`
	Officers     int `json:"officers"`
	Closures     int `json:"closures"`
}

func Aggregate(items []incidents.Incident) Aggregations {
	agg := Aggregations{Total: len(items)}
	officers := map[string]struct{}{}
	for _, inc := range items {
		agg.Undocumented += inc.Undocumented
		if incidents.IsAccident(inc) {
			agg.Accidents++
		}
		if incidents.IsArrest(inc) {
			agg.Arrests++
		}
		if incidents.IsClosure(inc) {
			agg.Closures++
		}
		if inc.Officer != "" && inc.Officer != incidents.OfficerUnspecified {
			officers[inc.Officer] = struct{}{}
		}
	}
	agg.Officers = len(officers)
	return agg
}
