package handlers

import (
	"errors"
	"net/http"
	"time"

	"cjb-incidents/core/feedsync"
	"cjb-incidents/core/utils"
)

// FeedHandler serves the workbook as the bulk JSON feed.
type FeedHandler struct {
	exporter *feedsync.Exporter
	logger   *utils.Logger
	now      func() time.Time
}

func NewFeedHandler(exporter *feedsync.Exporter, logger *utils.Logger) *FeedHandler {
	return &FeedHandler{exporter: exporter, logger: logger, now: time.Now}
}

func (h *FeedHandler) Incidents(w http.ResponseWriter, r *http.Request) {
	if !h.exporter.SourceExists() {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": "Archivo Excel no encontrado",
			"path":  h.exporter.ExcelPath(),
		})
		return
	}
	snap, err := h.exporter.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, feedsync.ErrSourceMissing) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": "Archivo Excel no encontrado",
				"path":  h.exporter.ExcelPath(),
			})
			return
		}
		h.logger.Errorf("feed: read workbook: %v", err)
		writeError(w, http.StatusInternalServerError, "Error al leer el archivo Excel", err)
		return
	}
	h.logger.Printf("feed: served %d rows", snap.Count)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"count":      snap.Count,
		"lastUpdate": snap.LastUpdate,
		"data":       snap.Data,
	})
}

func (h *FeedHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"server":     "running",
		"excelPath":  h.exporter.ExcelPath(),
		"fileExists": h.exporter.SourceExists(),
		"timestamp":  h.now().UTC(),
	})
}
