package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"cjb-incidents/core/incidents"
)

const (
	DefaultPageSize = 25
	maxPageButtons  = 5
)

// Sortable table columns.
const (
	ColumnID           = "id"
	ColumnDate         = "date"
	ColumnType         = "type"
	ColumnQuadrant     = "quadrant"
	ColumnOfficer      = "officer"
	ColumnUndocumented = "undoc"
	ColumnNarrative    = "narrative"
)

// TableView is the paging and sorting state of the incidents table.
type TableView struct {
	SortColumn string
	SortDesc   bool
	Page       int
	PageSize   int
}

func NewTableView(pageSize int) *TableView {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &TableView{SortColumn: ColumnDate, SortDesc: true, Page: 1, PageSize: pageSize}
}

// ToggleSort flips the direction for the current column; a new column starts descending.
func (v *TableView) ToggleSort(column string) {
	if v.SortColumn == column {
		v.SortDesc = !v.SortDesc
		return
	}
	v.SortColumn = column
	v.SortDesc = true
}

// GoTo moves to page; out-of-range pages are clamped when rendering.
func (v *TableView) GoTo(page int) {
	v.Page = page
}

// OnEvent returns to the first page whenever the filtered set changes.
func (v *TableView) OnEvent(e Event) {
	v.Page = 1
}

type TablePage struct {
	Rows       []incidents.Incident `json:"rows"`
	From       int                  `json:"from"`
	To         int                  `json:"to"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"totalPages"`
	Pages      []int                `json:"pages"`
}

// Render sorts a copy of items and slices out the current page.
func (v *TableView) Render(items []incidents.Incident) TablePage {
	pageSize := v.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	data := append([]incidents.Incident(nil), items...)
	less := v.less()
	sort.SliceStable(data, func(i, j int) bool {
		if v.SortDesc {
			return less(data[j], data[i])
		}
		return less(data[i], data[j])
	})

	total := len(data)
	totalPages := (total + pageSize - 1) / pageSize
	page := v.Page
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	out := TablePage{Rows: []incidents.Incident{}, Total: total, Page: page, TotalPages: totalPages, Pages: []int{}}
	if start < total {
		out.Rows = data[start:end]
		out.From = start + 1
	}
	out.To = end

	first := page - 2
	if first < 1 {
		first = 1
	}
	last := first + maxPageButtons - 1
	if last > totalPages {
		last = totalPages
	}
	for i := first; i <= last; i++ {
		out.Pages = append(out.Pages, i)
	}
	return out
}

func (v *TableView) less() func(a, b incidents.Incident) bool {
	switch v.SortColumn {
	case ColumnID:
		return func(a, b incidents.Incident) bool { return leadingInt(a.ID) < leadingInt(b.ID) }
	case ColumnDate:
		return func(a, b incidents.Incident) bool { return unixOrZero(a) < unixOrZero(b) }
	case ColumnUndocumented:
		return func(a, b incidents.Incident) bool { return a.Undocumented < b.Undocumented }
	}
	column := v.SortColumn
	return func(a, b incidents.Incident) bool {
		return strings.ToLower(textColumn(a, column)) < strings.ToLower(textColumn(b, column))
	}
}

func unixOrZero(inc incidents.Incident) int64 {
	if inc.Date == nil {
		return 0
	}
	return inc.Date.Unix()
}

// leadingInt reads the numeric prefix of an id such as "12" or "12-3".
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func textColumn(inc incidents.Incident, column string) string {
	switch column {
	case ColumnType:
		return inc.Type
	case ColumnQuadrant:
		return inc.Quadrant
	case ColumnOfficer:
		return inc.Officer
	case ColumnNarrative:
		return inc.Narrative
	}
	return ""
}
