package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"cjb-incidents/api/handlers"
	"cjb-incidents/api/routegroups"
)

type routeHandlers struct {
	feed      *handlers.FeedHandler
	history   *handlers.HistoryHandler
	dashboard *handlers.DashboardHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		feed:      handlers.NewFeedHandler(s.exporter, s.logger),
		history:   handlers.NewHistoryHandler(s.snapshots, s.runs, s.syncer, s.logger),
		dashboard: handlers.NewDashboardHandler(s.fetcher, s.cfg.Location(), s.cfg.Dashboard.PageSize, s.logger),
	}
}

func (s *Server) registerRoutes(r chi.Router) {
	h := s.newRouteHandlers()
	r.Route("/api", func(apiRouter chi.Router) {
		routegroups.RegisterFeed(apiRouter, h.feed, h.history)
		routegroups.RegisterDashboard(apiRouter, h.dashboard)
		apiRouter.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found", "path": r.URL.Path})
		})
	})
	r.Get("/", s.serveIndex)
	r.Handle("/*", s.staticHandler())
}

// DashboardPage is served at / when present in the static directory.
const DashboardPage = "Dashboard SEG.html"

func (s *Server) staticDir() string {
	dir := strings.TrimSpace(s.cfg.StaticDir)
	if dir == "" {
		dir = "."
	}
	return dir
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	page := filepath.Join(s.staticDir(), DashboardPage)
	if _, err := os.Stat(page); err != nil {
		page = filepath.Join(s.staticDir(), "index.html")
	}
	http.ServeFile(w, r, page)
}

func (s *Server) staticHandler() http.Handler {
	return http.FileServer(dotFileHidingFS{http.Dir(s.staticDir())})
}

// dotFileHidingFS keeps .env, .git and the like out of the static tree.
type dotFileHidingFS struct {
	http.FileSystem
}

func (fsys dotFileHidingFS) Open(name string) (http.File, error) {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != "" {
			return nil, os.ErrNotExist
		}
	}
	return fsys.FileSystem.Open(name)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
