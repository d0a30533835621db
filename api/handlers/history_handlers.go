package handlers

import (
	"errors"
	"net/http"

	"cjb-incidents/core/feedsync"
	"cjb-incidents/core/store"
	"cjb-incidents/core/utils"
)

const maxHistoryLimit = 500

type HistoryHandler struct {
	snapshots store.SnapshotsStore
	runs      store.SyncRunsStore
	syncer    *feedsync.Syncer
	logger    *utils.Logger
}

func NewHistoryHandler(snapshots store.SnapshotsStore, runs store.SyncRunsStore, syncer *feedsync.Syncer, logger *utils.Logger) *HistoryHandler {
	return &HistoryHandler{snapshots: snapshots, runs: runs, syncer: syncer, logger: logger}
}

func historyLimit(r *http.Request) int {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
	if limit <= 0 {
		limit = 20
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return limit
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		writeJSON(w, http.StatusOK, map[string]any{"items": []store.SnapshotMeta{}})
		return
	}
	items, err := h.snapshots.ListSnapshots(r.Context(), historyLimit(r))
	if err != nil {
		h.logger.Errorf("history: list: %v", err)
		writeError(w, http.StatusInternalServerError, "server error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		writeError(w, http.StatusNotFound, "not found", nil)
		return
	}
	meta, snap, err := h.snapshots.GetSnapshot(r.Context(), urlParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", nil)
			return
		}
		h.logger.Errorf("history: get: %v", err)
		writeError(w, http.StatusInternalServerError, "server error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"meta":       meta,
		"count":      snap.Count,
		"lastUpdate": snap.LastUpdate,
		"data":       snap.Data,
	})
}

func (h *HistoryHandler) Runs(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeJSON(w, http.StatusOK, map[string]any{"items": []store.SyncRun{}})
		return
	}
	items, err := h.runs.ListRuns(r.Context(), historyLimit(r))
	if err != nil {
		h.logger.Errorf("history: runs: %v", err)
		writeError(w, http.StatusInternalServerError, "server error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Sync runs the producer once. Throttled and busy calls are reported with
// their own status codes so callers can retry later.
func (h *HistoryHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		writeError(w, http.StatusServiceUnavailable, "sync disabled", nil)
		return
	}
	rep := h.syncer.Sync(r.Context(), feedsync.TriggerManual)
	status := http.StatusOK
	body := map[string]any{"report": rep}
	switch rep.Outcome {
	case feedsync.SyncThrottled:
		status = http.StatusTooManyRequests
		body["retryAfterSec"] = int(rep.Wait.Seconds() + 0.999)
	case feedsync.SyncBusy:
		status = http.StatusConflict
	case feedsync.SyncFailed:
		status = http.StatusInternalServerError
		if rep.Err != nil {
			body["error"] = rep.Err.Error()
		}
	}
	writeJSON(w, status, body)
}
