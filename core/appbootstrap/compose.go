package appbootstrap

import (
	"database/sql"

	"cjb-incidents/api"
	"cjb-incidents/config"
	"cjb-incidents/core/feedsync"
	"cjb-incidents/core/store"
	"cjb-incidents/core/utils"
)

type runtimeComposition struct {
	serverDeps api.ServerDeps
	syncer     *feedsync.Syncer
	watcher    *feedsync.Watcher
	scheduler  *feedsync.Scheduler
	workers    []api.BackgroundWorker
}

func composeRuntime(cfg *config.AppConfig, db *sql.DB, logger *utils.Logger) (*runtimeComposition, error) {
	snapshots := store.NewSnapshotsStore(db)
	runs := store.NewSyncRunsStore(db)
	syncer := feedsync.NewSyncerFromConfig(cfg, snapshots, runs, logger)
	exporter := syncer.Exporter()

	rc := &runtimeComposition{
		serverDeps: api.ServerDeps{
			Exporter:  exporter,
			Syncer:    syncer,
			Fetcher:   feedsync.NewServiceCascade(exporter, snapshots, logger),
			Snapshots: snapshots,
			Runs:      runs,
		},
		syncer: syncer,
	}
	if cfg.Sync.Enabled {
		rc.watcher = feedsync.NewWatcher(exporter.ExcelPath(), cfg.StabilityWindow(), syncer.SyncOnChange, logger)
		rc.workers = append(rc.workers, rc.watcher)
	}
	if cfg.Scheduler.Enabled {
		rc.scheduler = feedsync.NewScheduler(cfg.Scheduler, syncer, logger)
		rc.workers = append(rc.workers, rc.scheduler)
	}
	rc.serverDeps.Workers = rc.workers
	return rc, nil
}
