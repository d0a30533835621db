package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"cjb-incidents/config"
	"cjb-incidents/core/feed"
	"cjb-incidents/core/feedsync"
	"cjb-incidents/core/store"
	"cjb-incidents/core/utils"
)

// BackgroundWorker is started with the server and stopped on shutdown.
type BackgroundWorker interface {
	StartWithContext(ctx context.Context) error
	StopWithContext(ctx context.Context) error
}

type ServerDeps struct {
	Exporter  *feedsync.Exporter
	Syncer    *feedsync.Syncer
	Fetcher   feed.Fetcher
	Snapshots store.SnapshotsStore
	Runs      store.SyncRunsStore
	Workers   []BackgroundWorker
}

type Server struct {
	cfg       *config.AppConfig
	logger    *utils.Logger
	exporter  *feedsync.Exporter
	syncer    *feedsync.Syncer
	fetcher   feed.Fetcher
	snapshots store.SnapshotsStore
	runs      store.SyncRunsStore
	workers   []BackgroundWorker

	mu         sync.Mutex
	httpServer *http.Server
	started    []BackgroundWorker
}

func NewServer(cfg *config.AppConfig, deps ServerDeps, logger *utils.Logger) *Server {
	fetcher := deps.Fetcher
	if fetcher == nil && deps.Exporter != nil {
		fetcher = feedsync.NewServiceCascade(deps.Exporter, deps.Snapshots, logger)
	}
	return &Server{
		cfg:       cfg,
		logger:    logger,
		exporter:  deps.Exporter,
		syncer:    deps.Syncer,
		fetcher:   fetcher,
		snapshots: deps.Snapshots,
		runs:      deps.Runs,
		workers:   deps.Workers,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.corsMiddleware)
	s.registerRoutes(r)
	return r
}

// ListenAndServe starts the background workers and blocks until ctx is
// cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	if err := s.startWorkers(ctx); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("server: listening on %s", s.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		s.stopWorkers(context.Background())
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	s.stopWorkers(ctx)
	s.logger.Printf("server: stopped")
	return err
}

func (s *Server) startWorkers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers {
		if w == nil {
			continue
		}
		if err := w.StartWithContext(ctx); err != nil {
			s.logger.Errorf("server: start worker: %v", err)
			continue
		}
		s.started = append(s.started, w)
	}
	return nil
}

func (s *Server) stopWorkers(ctx context.Context) {
	s.mu.Lock()
	started := s.started
	s.started = nil
	s.mu.Unlock()
	for i := len(started) - 1; i >= 0; i-- {
		if err := started[i].StopWithContext(ctx); err != nil {
			s.logger.Errorf("server: stop worker: %v", err)
		}
	}
}
