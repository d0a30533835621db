package dashboard

import (
	"sort"
	"time"

	"cjb-incidents/core/incidents"
)

// ActionCounts tallies normalized action phrases across items and returns the
// top limit buckets. limit <= 0 keeps every bucket.
func ActionCounts(items []incidents.Incident, limit int) []Group {
	var keys []string
	for _, inc := range items {
		for _, phrase := range incidents.SplitActions(inc.Actions) {
			if label := incidents.NormalizeAction(phrase); label != "" {
				keys = append(keys, label)
			}
		}
	}
	groups := countInOrder(keys)
	sortByCountDesc(groups)
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// UndocumentedByQuadrant sums undocumented persons per quadrant; quadrants
// with no undocumented persons are omitted.
func UndocumentedByQuadrant(items []incidents.Incident) []Group {
	sums := map[string]int{}
	for _, inc := range items {
		if inc.Undocumented > 0 {
			sums[inc.Quadrant] += inc.Undocumented
		}
	}
	out := make([]Group, 0, len(sums))
	for k, v := range sums {
		out = append(out, Group{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// CategoryCounts tallies items by type badge family, largest first.
func CategoryCounts(items []incidents.Incident) []Group {
	keys := make([]string, 0, len(items))
	for _, inc := range items {
		keys = append(keys, incidents.TypeCategory(inc.Type))
	}
	groups := countInOrder(keys)
	sortByCountDesc(groups)
	return groups
}

// MonthlyCounts is indexed like the month cross-filter (January = 0).
func MonthlyCounts(items []incidents.Incident) [12]int {
	var months [12]int
	for _, inc := range items {
		if inc.Date != nil {
			months[monthIndex(*inc.Date)]++
		}
	}
	return months
}

// Heatmap counts incidents per [weekday][hour].
func Heatmap(items []incidents.Incident) [7][24]int {
	var grid [7][24]int
	for _, inc := range items {
		if inc.Date != nil {
			grid[inc.Date.Weekday()][inc.Date.Hour()]++
		}
	}
	return grid
}

type OfficerStats struct {
	Officer      string `json:"officer"`
	Incidents    int    `json:"incidents"`
	Undocumented int    `json:"undocumented"`
}

// OfficerPerformance ranks named officers by undocumented persons handled.
func OfficerPerformance(items []incidents.Incident, limit int) []OfficerStats {
	idx := map[string]int{}
	var out []OfficerStats
	for _, inc := range items {
		if inc.Officer == "" || inc.Officer == incidents.OfficerUnspecified {
			continue
		}
		i, ok := idx[inc.Officer]
		if !ok {
			i = len(out)
			idx[inc.Officer] = i
			out = append(out, OfficerStats{Officer: inc.Officer})
		}
		out[i].Incidents++
		out[i].Undocumented += inc.Undocumented
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Undocumented > out[j].Undocumented })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []OfficerStats{}
	}
	return out
}

// DateBounds returns the earliest and latest dates; ok is false when no
// incident carries a date.
func DateBounds(items []incidents.Incident) (minDate, maxDate time.Time, ok bool) {
	for _, inc := range items {
		if inc.Date == nil {
			continue
		}
		if !ok || inc.Date.Before(minDate) {
			minDate = *inc.Date
		}
		if !ok || inc.Date.After(maxDate) {
			maxDate = *inc.Date
		}
		ok = true
	}
	return minDate, maxDate, ok
}

// Options lists the distinct values for the dropdown controls, sorted.
type Options struct {
	Types     []string `json:"types"`
	Quadrants []string `json:"quadrants"`
	Officers  []string `json:"officers"`
}

func FilterOptions(items []incidents.Incident) Options {
	return Options{
		Types:     distinct(items, func(i incidents.Incident) string { return i.Type }),
		Quadrants: distinct(items, func(i incidents.Incident) string { return i.Quadrant }),
		Officers:  distinct(items, func(i incidents.Incident) string { return i.Officer }),
	}
}

func distinct(items []incidents.Incident, pick func(incidents.Incident) string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, inc := range items {
		v := pick(inc)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
