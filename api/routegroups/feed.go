package routegroups

import (
	"github.com/go-chi/chi/v5"

	"cjb-incidents/api/handlers"
)

func RegisterFeed(apiRouter chi.Router, feed *handlers.FeedHandler, history *handlers.HistoryHandler) {
	apiRouter.MethodFunc("GET", "/incidentes", feed.Incidents)
	apiRouter.MethodFunc("GET", "/status", feed.Status)

	apiRouter.Route("/history", func(historyRouter chi.Router) {
		historyRouter.MethodFunc("GET", "/", history.List)
		historyRouter.MethodFunc("GET", "/{id}", history.Get)
	})
	apiRouter.Route("/sync", func(syncRouter chi.Router) {
		syncRouter.MethodFunc("POST", "/", history.Sync)
		syncRouter.MethodFunc("GET", "/runs", history.Runs)
	})
}

func RegisterDashboard(apiRouter chi.Router, dashboard *handlers.DashboardHandler) {
	apiRouter.Route("/dashboard", func(dashboardRouter chi.Router) {
		dashboardRouter.MethodFunc("GET", "/", dashboard.Dashboard)
		dashboardRouter.MethodFunc("GET", "/summary", dashboard.Summary)
		dashboardRouter.MethodFunc("GET", "/export.csv", dashboard.ExportCSV)
		dashboardRouter.MethodFunc("GET", "/export.xlsx", dashboard.ExportXLSX)
	})
	apiRouter.MethodFunc("GET", "/incidentes/{id}/report", dashboard.IncidentReport)
}
