package feedsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"cjb-incidents/config"
	"cjb-incidents/core/store"
	"cjb-incidents/core/utils"
)

type Outcome string

const (
	SyncDone      Outcome = "done"
	SyncThrottled Outcome = "throttled"
	SyncBusy      Outcome = "busy"
	SyncUnchanged Outcome = "unchanged"
	SyncFailed    Outcome = "failed"
)

const (
	TriggerInitial  = "initial"
	TriggerWatch    = "watch"
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// Report describes one Sync call. Wait is set for throttled calls.
type Report struct {
	Outcome    Outcome       `json:"outcome"`
	Trigger    string        `json:"trigger"`
	Count      int           `json:"count"`
	SnapshotID string        `json:"snapshotId,omitempty"`
	Saved      bool          `json:"saved"`
	Wait       time.Duration `json:"wait,omitempty"`
	Err        error         `json:"-"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
}

type SyncOptions struct {
	MinInterval time.Duration
	SettleDelay time.Duration
	HistoryKeep int
	Snapshots   store.SnapshotsStore
	Runs        store.SyncRunsStore
}

// Syncer exports the workbook, keeps history and publishes the feed. Calls
// closer together than MinInterval and calls made while one is running are
// rejected rather than queued.
type Syncer struct {
	exporter  *Exporter
	publisher Publisher
	opts      SyncOptions
	logger    *utils.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu         sync.Mutex
	inProgress bool
	lastSync   time.Time
	last       *Report
}

func NewSyncer(exporter *Exporter, publisher Publisher, opts SyncOptions, logger *utils.Logger) *Syncer {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Syncer{
		exporter:  exporter,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// NewSyncerFromConfig wires the exporter and, when enabled, the git publisher.
func NewSyncerFromConfig(cfg *config.AppConfig, snapshots store.SnapshotsStore, runs store.SyncRunsStore, logger *utils.Logger) *Syncer {
	var publisher Publisher = NopPublisher{}
	if cfg.Sync.GitEnabled {
		publisher = NewGitPublisher(cfg.Sync.GitRepoDir, cfg.Sync.GitRemote, cfg.Sync.GitBranch, nil)
	}
	return NewSyncer(NewExporter(cfg.Sync.ExcelPath, cfg.Sync.OutputPath), publisher, SyncOptions{
		MinInterval: cfg.EffectiveMinSyncInterval(),
		SettleDelay: cfg.SettleDelay(),
		HistoryKeep: cfg.Sync.HistoryKeep,
		Snapshots:   snapshots,
		Runs:        runs,
	}, logger)
}

func (s *Syncer) Exporter() *Exporter { return s.exporter }

// LastReport returns the most recent completed run, if any.
func (s *Syncer) LastReport() (Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Report{}, false
	}
	return *s.last, true
}

// SyncOnChange is the Watcher callback. Throttled changes are dropped.
func (s *Syncer) SyncOnChange(ctx context.Context) {
	s.Sync(ctx, TriggerWatch)
}

func (s *Syncer) Sync(ctx context.Context, trigger string) Report {
	started := s.now()
	rep := Report{Trigger: trigger, StartedAt: started.UTC()}

	s.mu.Lock()
	if !s.lastSync.IsZero() {
		if elapsed := started.Sub(s.lastSync); elapsed < s.opts.MinInterval {
			s.mu.Unlock()
			rep.Outcome = SyncThrottled
			rep.Wait = s.opts.MinInterval - elapsed
			rep.FinishedAt = rep.StartedAt
			s.logger.Printf("sync: %s throttled, next in %s", trigger, rep.Wait.Round(time.Second))
			return rep
		}
	}
	if s.inProgress {
		s.mu.Unlock()
		rep.Outcome = SyncBusy
		rep.FinishedAt = rep.StartedAt
		s.logger.Printf("sync: %s skipped, sync in progress", trigger)
		return rep
	}
	s.inProgress = true
	s.lastSync = started
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inProgress = false
		last := rep
		s.last = &last
		s.mu.Unlock()
	}()

	s.run(ctx, &rep)
	rep.FinishedAt = s.now().UTC()
	s.record(ctx, rep)
	switch rep.Outcome {
	case SyncFailed:
		s.logger.Errorf("sync: %s failed: %v", trigger, rep.Err)
	case SyncUnchanged:
		s.logger.Printf("sync: %s no new changes (%d rows)", trigger, rep.Count)
	default:
		s.logger.Printf("sync: %s done (%d rows)", trigger, rep.Count)
	}
	return rep
}

func (s *Syncer) run(ctx context.Context, rep *Report) {
	fail := func(err error) {
		rep.Outcome = SyncFailed
		rep.Err = err
	}
	if !s.exporter.SourceExists() {
		fail(ErrSourceMissing)
		return
	}
	// let the file sync client finish writing the workbook
	if err := s.sleep(ctx, s.opts.SettleDelay); err != nil {
		fail(err)
		return
	}
	snap, err := s.exporter.Export(ctx)
	if err != nil {
		fail(err)
		return
	}
	rep.Count = snap.Count

	if s.opts.Snapshots != nil {
		meta, saved, err := s.opts.Snapshots.SaveSnapshot(ctx, "excel", snap)
		if err != nil {
			s.logger.Errorf("sync: save snapshot: %v", err)
		} else {
			rep.SnapshotID = meta.ID
			rep.Saved = saved
			if saved && s.opts.HistoryKeep > 0 {
				if _, err := s.opts.Snapshots.PruneSnapshots(ctx, s.opts.HistoryKeep); err != nil {
					s.logger.Errorf("sync: prune history: %v", err)
				}
			}
		}
	}

	err = s.publisher.Publish(ctx, s.exporter.OutputPath(), snap.Count, s.now())
	switch {
	case errors.Is(err, ErrNothingToCommit):
		rep.Outcome = SyncUnchanged
	case err != nil:
		fail(err)
	default:
		rep.Outcome = SyncDone
	}
}

func (s *Syncer) record(ctx context.Context, rep Report) {
	if s.opts.Runs == nil {
		return
	}
	run := &store.SyncRun{
		Trigger:    rep.Trigger,
		Outcome:    string(rep.Outcome),
		Count:      rep.Count,
		SnapshotID: rep.SnapshotID,
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
	}
	if rep.Err != nil {
		run.Error = rep.Err.Error()
	}
	// record cancelled runs too
	if err := s.opts.Runs.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Errorf("sync: record run: %v", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
