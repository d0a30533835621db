package feedsync

import (
	"context"

	"cjb-incidents/core/feed"
	"cjb-incidents/core/store"
	"cjb-incidents/core/utils"
)

// HistorySource serves the newest stored snapshot when the workbook is out
// of reach.
type HistorySource struct {
	Snapshots store.SnapshotsStore
}

func (HistorySource) Name() string { return "history" }

func (h HistorySource) Fetch(ctx context.Context) (feed.Snapshot, error) {
	if h.Snapshots == nil {
		return feed.Snapshot{}, store.ErrNotFound
	}
	_, snap, err := h.Snapshots.LatestSnapshot(ctx)
	if err != nil {
		return feed.Snapshot{}, err
	}
	return *snap, nil
}

// NewServiceCascade reads the workbook first and falls back to history.
func NewServiceCascade(exporter *Exporter, snapshots store.SnapshotsStore, logger *utils.Logger) *feed.Cascade {
	sources := []feed.Source{exporter}
	if snapshots != nil {
		sources = append(sources, HistorySource{Snapshots: snapshots})
	}
	return feed.NewCascade(0, false, logger, sources...)
}
