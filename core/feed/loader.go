package feed

import (
	"context"
	"sync"
	"time"

	"cjb-incidents/core/dashboard"
	"cjb-incidents/core/incidents"
	"cjb-incidents/core/utils"
)

// Fetcher is satisfied by *Cascade.
type Fetcher interface {
	Fetch(ctx context.Context) (Result, error)
}

// Loader feeds an IncidentStore: it fetches, normalizes and loads. A failed
// fetch or parse leaves the store untouched. Loader serializes access to the
// store so periodic refreshes and readers do not race.
type Loader struct {
	mu         sync.Mutex
	fetcher    Fetcher
	normalizer *incidents.Normalizer
	store      *dashboard.IncidentStore
	logger     *utils.Logger

	lastSource string
	lastUpdate time.Time
}

func NewLoader(fetcher Fetcher, normalizer *incidents.Normalizer, store *dashboard.IncidentStore, logger *utils.Logger) *Loader {
	return &Loader{fetcher: fetcher, normalizer: normalizer, store: store, logger: logger}
}

// Refresh pulls the feed through the fetcher and loads it.
func (l *Loader) Refresh(ctx context.Context) (Result, error) {
	res, err := l.fetcher.Fetch(ctx)
	if err != nil {
		return Result{}, err
	}
	l.load(res.Source, res.Snapshot)
	return res, nil
}

// LoadFile is the manual-upload path.
func (l *Loader) LoadFile(path string) (int, error) {
	snap, err := FileSource{Path: path}.Fetch(context.Background())
	if err != nil {
		return 0, err
	}
	l.load("file:"+path, snap)
	return snap.Count, nil
}

func (l *Loader) load(source string, snap Snapshot) {
	items := l.normalizer.Normalize(snap.Data)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.Load(items)
	l.lastSource = source
	l.lastUpdate = snap.LastUpdate
	l.logger.Printf("feed: %d incidents loaded from %s", len(items), source)
}

// View runs fn with exclusive access to the store.
func (l *Loader) View(fn func(*dashboard.IncidentStore)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.store)
}

// LastLoad reports where and when the current data came from.
func (l *Loader) LastLoad() (string, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSource, l.lastUpdate
}

// Run refreshes every interval until ctx is done; onLoad runs after each
// successful refresh. Failures are logged and the previous data is kept.
func (l *Loader) Run(ctx context.Context, every time.Duration, onLoad func(Result)) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := l.Refresh(ctx)
			if err != nil {
				l.logger.Errorf("feed: refresh failed: %v", err)
				continue
			}
			if onLoad != nil {
				onLoad(res)
			}
		}
	}
}
