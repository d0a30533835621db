package appbootstrap

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cjb-incidents/config"
	"cjb-incidents/core/feedsync"
	"cjb-incidents/core/utils"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	return &config.AppConfig{
		DBDriver: "sqlite",
		DBURL:    filepath.Join(dir, "history.db"),
		Sync: config.SyncConfig{
			ExcelPath:  filepath.Join(dir, "Reporte.xlsx"),
			OutputPath: filepath.Join(dir, "data.json"),
		},
		Scheduler: config.SchedulerConfig{IntervalSeconds: 60},
	}
}

func TestComposeRuntimeWorkersFollowConfig(t *testing.T) {
	cfg := testConfig(t)
	db, err := OpenHistory(context.Background(), cfg, utils.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	rc, err := composeRuntime(cfg, db, utils.Discard())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(rc.workers) != 0 || rc.watcher != nil || rc.scheduler != nil {
		t.Fatalf("expected no workers with sync and scheduler disabled")
	}
	if rc.serverDeps.Fetcher == nil || rc.serverDeps.Exporter == nil || rc.serverDeps.Snapshots == nil {
		t.Fatalf("server deps incomplete: %+v", rc.serverDeps)
	}
	if rc.serverDeps.Exporter.ExcelPath() != cfg.Sync.ExcelPath {
		t.Fatalf("unexpected excel path %s", rc.serverDeps.Exporter.ExcelPath())
	}

	cfg.Sync.Enabled = true
	cfg.Scheduler.Enabled = true
	rc, err = composeRuntime(cfg, db, utils.Discard())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(rc.workers) != 2 || rc.watcher == nil || rc.scheduler == nil {
		t.Fatalf("expected watcher and scheduler, got %d workers", len(rc.workers))
	}
	if len(rc.serverDeps.Workers) != 2 {
		t.Fatalf("workers not handed to the server")
	}
}

func TestWatchRequiresWorkbook(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := Watch(ctx, cfg, utils.Discard())
	if !errors.Is(err, feedsync.ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing, got %v", err)
	}
}

func TestOpenHistoryRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "oracle"
	if _, err := OpenHistory(context.Background(), cfg, utils.Discard()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
