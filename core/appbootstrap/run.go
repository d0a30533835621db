package appbootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"cjb-incidents/api"
	"cjb-incidents/config"
	"cjb-incidents/core/feedsync"
	"cjb-incidents/core/store"
	"cjb-incidents/core/utils"
)

// OpenHistory opens the snapshot database and brings its schema up to date.
func OpenHistory(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := store.ApplyMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return db, nil
}

// Serve runs the feed service with its watcher and scheduler until ctx is
// cancelled. With sync enabled the workbook is exported once before listening.
func Serve(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) error {
	db, err := OpenHistory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	rc, err := composeRuntime(cfg, db, logger)
	if err != nil {
		return err
	}
	if cfg.Sync.Enabled {
		rc.syncer.Sync(ctx, feedsync.TriggerInitial)
	}
	return api.NewServer(cfg, rc.serverDeps, logger).ListenAndServe(ctx)
}

// Watch is the headless producer: an initial sync, then a sync after every
// stable change of the workbook until ctx is cancelled.
func Watch(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) error {
	db, err := OpenHistory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	watchCfg := *cfg
	watchCfg.Sync.Enabled = true
	rc, err := composeRuntime(&watchCfg, db, logger)
	if err != nil {
		return err
	}
	if !rc.syncer.Exporter().SourceExists() {
		return fmt.Errorf("%w: %s", feedsync.ErrSourceMissing, rc.syncer.Exporter().ExcelPath())
	}
	rep := rc.syncer.Sync(ctx, feedsync.TriggerInitial)
	if rep.Outcome == feedsync.SyncFailed {
		logger.Errorf("sync: initial export failed: %v", rep.Err)
	}

	started := make([]api.BackgroundWorker, 0, len(rc.workers))
	for _, w := range rc.workers {
		if err := w.StartWithContext(ctx); err != nil {
			stopAll(started, logger)
			return err
		}
		started = append(started, w)
	}
	logger.Printf("sync: watching %s", rc.syncer.Exporter().ExcelPath())
	<-ctx.Done()
	stopAll(started, logger)
	return nil
}

func stopAll(workers []api.BackgroundWorker, logger *utils.Logger) {
	for i := len(workers) - 1; i >= 0; i-- {
		if err := workers[i].StopWithContext(context.Background()); err != nil {
			logger.Errorf("sync: stop worker: %v", err)
		}
	}
}
