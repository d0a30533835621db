package feedsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"cjb-incidents/config"
	"cjb-incidents/core/utils"
)

// Scheduler runs a periodic sync as a safety net for missed file events.
type Scheduler struct {
	cfg    config.SchedulerConfig
	syncer *Syncer
	logger *utils.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

func NewScheduler(cfg config.SchedulerConfig, syncer *Syncer, logger *utils.Logger) *Scheduler {
	return &Scheduler{cfg: cfg, syncer: syncer, logger: logger}
}

func (s *Scheduler) Spec() string {
	interval := time.Duration(s.cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return fmt.Sprintf("@every %s", interval)
}

func (s *Scheduler) StartWithContext(ctx context.Context) error {
	if s == nil || s.syncer == nil || !s.cfg.Enabled {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New()
	if _, err := c.AddFunc(s.Spec(), func() { _ = s.RunOnce(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("schedule sync: %w", err)
	}
	c.Start()
	s.cron = c
	s.cancel = cancel
	s.running = true
	s.logger.Printf("scheduler: sync %s", s.Spec())
	return nil
}

// StopWithContext cancels the in-flight run and waits for it to return.
func (s *Scheduler) StopWithContext(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	wasRunning := s.running
	s.cron, s.cancel, s.running = nil, nil, false
	s.mu.Unlock()
	if !wasRunning || c == nil {
		return nil
	}
	cancel()
	done := c.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s == nil || s.syncer == nil || !s.cfg.Enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	rep := s.syncer.Sync(ctx, TriggerSchedule)
	if rep.Outcome == SyncFailed {
		return rep.Err
	}
	return nil
}
