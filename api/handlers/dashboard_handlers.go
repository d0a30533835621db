package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"cjb-incidents/core/dashboard"
	"cjb-incidents/core/feed"
	"cjb-incidents/core/feedsync"
	"cjb-incidents/core/incidents"
	"cjb-incidents/core/utils"
)

const (
	topActions  = 10
	topOfficers = 10
)

// DashboardHandler renders the filtered dashboard from the current feed.
// Each request loads a fresh IncidentStore, so requests never share filter state.
type DashboardHandler struct {
	fetcher  feed.Fetcher
	loc      *time.Location
	pageSize int
	logger   *utils.Logger
	now      func() time.Time
}

func NewDashboardHandler(fetcher feed.Fetcher, loc *time.Location, pageSize int, logger *utils.Logger) *DashboardHandler {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardHandler{fetcher: fetcher, loc: loc, pageSize: pageSize, logger: logger, now: time.Now}
}

type loadedView struct {
	store  *dashboard.IncidentStore
	source string
	update time.Time
}

func (h *DashboardHandler) load(r *http.Request) (*loadedView, error) {
	res, err := h.fetcher.Fetch(r.Context())
	if err != nil {
		return nil, err
	}
	s := dashboard.NewIncidentStore(h.loc)
	s.Load(incidents.NewNormalizer(h.loc).Normalize(res.Snapshot.Data))
	dashboard.ParseQuery(r.URL.Query()).Apply(s)
	return &loadedView{store: s, source: res.Source, update: res.Snapshot.LastUpdate}, nil
}

func (h *DashboardHandler) loadOrFail(w http.ResponseWriter, r *http.Request) (*loadedView, bool) {
	view, err := h.load(r)
	if err == nil {
		return view, true
	}
	h.logger.Errorf("dashboard: load feed: %v", err)
	if errors.Is(err, feedsync.ErrSourceMissing) {
		writeError(w, http.StatusNotFound, "Archivo Excel no encontrado", err)
		return nil, false
	}
	if errors.Is(err, feed.ErrEmptyFile) {
		writeError(w, http.StatusNotFound, "El archivo Excel no tiene incidentes", err)
		return nil, false
	}
	writeError(w, http.StatusBadGateway, "No se pudieron cargar los datos", err)
	return nil, false
}

type periodGroup struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type dateBounds struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadOrFail(w, r)
	if !ok {
		return
	}
	s := view.store
	q := r.URL.Query()
	items := s.Filtered()

	period := dashboard.ParsePeriod(q.Get("period"))
	byPeriod := []periodGroup{}
	for _, g := range s.GroupByPeriod(period) {
		byPeriod = append(byPeriod, periodGroup{Key: g.Key, Label: dashboard.PeriodLabel(g.Key, period), Count: g.Count})
	}

	table := dashboard.NewTableView(h.pageSize)
	if col := strings.TrimSpace(q.Get("sort")); col != "" {
		table.SortColumn = col
		table.SortDesc = q.Get("dir") != "asc"
	}
	table.GoTo(parseIntDefault(q.Get("page"), 1))

	var bounds *dateBounds
	if lo, hi, ok := dashboard.DateBounds(s.All()); ok {
		bounds = &dateBounds{Min: lo.Format("2006-01-02"), Max: hi.Format("2006-01-02")}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"source":                 view.source,
		"lastUpdate":             view.update,
		"total":                  s.Len(),
		"filtered":               len(items),
		"active":                 s.ActiveFilters(),
		"aggregations":           s.Aggregations(),
		"byType":                 s.GroupBy(dashboard.FieldType),
		"byCategory":             dashboard.CategoryCounts(items),
		"byQuadrant":             s.GroupBy(dashboard.FieldQuadrant),
		"byOfficer":              s.GroupBy(dashboard.FieldOfficer),
		"byPersonRole":           s.GroupBy(dashboard.FieldPersonRole),
		"byHour":                 s.GroupByHour(),
		"byDayOfWeek":            s.GroupByDayOfWeek(),
		"period":                 period,
		"byPeriod":               byPeriod,
		"actions":                dashboard.ActionCounts(items, topActions),
		"undocumentedByQuadrant": dashboard.UndocumentedByQuadrant(items),
		"monthly":                dashboard.MonthlyCounts(items),
		"heatmap":                dashboard.Heatmap(items),
		"officers":               dashboard.OfficerPerformance(items, topOfficers),
		"options":                dashboard.FilterOptions(s.All()),
		"dateBounds":             bounds,
		"table":                  table.Render(items),
	})
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadOrFail(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := dashboard.RenderSummaryText(&buf, dashboard.BuildSummary(view.store, h.now())); err != nil {
		h.logger.Errorf("dashboard: summary: %v", err)
		writeError(w, http.StatusInternalServerError, "server error", nil)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv; charset=utf-8", dashboard.WriteCSV)
}

func (h *DashboardHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", dashboard.WriteExcel)
}

func (h *DashboardHandler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(dst io.Writer, rows []dashboard.ExportRow) error) {
	view, ok := h.loadOrFail(w, r)
	if !ok {
		return
	}
	rows := dashboard.ExportRows(view.store.Filtered())
	var buf bytes.Buffer
	if err := write(&buf, rows); err != nil {
		h.logger.Errorf("dashboard: export %s: %v", ext, err)
		writeError(w, http.StatusInternalServerError, "server error", nil)
		return
	}
	filename := dashboard.ExportFilename("", ext, h.now())
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
	h.logger.Printf("dashboard: exported %d rows as %s", len(rows), ext)
}

// IncidentReport renders the printable report of one incident.
func (h *DashboardHandler) IncidentReport(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadOrFail(w, r)
	if !ok {
		return
	}
	inc, found := view.store.FindIncident(urlParam(r, "id"))
	if !found {
		writeError(w, http.StatusNotFound, "Incidente no encontrado", nil)
		return
	}
	var buf bytes.Buffer
	if err := dashboard.RenderIncidentReport(&buf, inc, h.now()); err != nil {
		h.logger.Errorf("dashboard: report %s: %v", inc.ID, err)
		writeError(w, http.StatusInternalServerError, "server error", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
