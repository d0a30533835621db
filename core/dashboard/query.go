package dashboard

import (
	"net/url"
	"strings"
)

// CrossParamPrefix marks cross-filter keys in URL queries, e.g. cf.hour=14.
const CrossParamPrefix = "cf."

// Query is a transportable filter set: URL parameters on the feed service,
// flags on the command line. Values are raw text.
type Query struct {
	Dropdown map[DropdownDimension]string
	Cross    map[CrossDimension]string
}

func NewQuery() Query {
	return Query{Dropdown: map[DropdownDimension]string{}, Cross: map[CrossDimension]string{}}
}

func ParseQuery(v url.Values) Query {
	q := NewQuery()
	for _, d := range DropdownDimensions {
		if raw := strings.TrimSpace(v.Get(string(d))); raw != "" {
			q.Dropdown[d] = raw
		}
	}
	for _, d := range CrossDimensions {
		if raw := strings.TrimSpace(v.Get(CrossParamPrefix + string(d))); raw != "" {
			q.Cross[d] = raw
		}
	}
	return q
}

// Values is the inverse of ParseQuery.
func (q Query) Values() url.Values {
	out := url.Values{}
	for _, d := range DropdownDimensions {
		if raw, ok := q.Dropdown[d]; ok && raw != "" {
			out.Set(string(d), raw)
		}
	}
	for _, d := range CrossDimensions {
		if raw, ok := q.Cross[d]; ok && raw != "" {
			out.Set(CrossParamPrefix+string(d), raw)
		}
	}
	return out
}

func (q Query) Empty() bool {
	return len(q.Dropdown) == 0 && len(q.Cross) == 0
}

// Apply replaces the filters of s with those of q, in the fixed dimension
// order. Dimensions missing from q are cleared, as are cross values that do
// not parse for their dimension, so a store can be re-queried in place.
func (q Query) Apply(s *IncidentStore) {
	for _, d := range DropdownDimensions {
		s.SetDropdownFilter(d, q.Dropdown[d])
	}
	for _, d := range CrossDimensions {
		v, ok := ParseFilterValue(d, q.Cross[d])
		if !ok {
			s.RemoveCrossFilter(d)
			continue
		}
		if cur, active := s.CrossFilter(d); active && cur == v {
			continue
		}
		s.SetCrossFilter(d, v)
	}
}
