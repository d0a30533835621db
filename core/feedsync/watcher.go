package feedsync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"cjb-incidents/core/utils"
)

// Watcher calls onChange once the workbook has stopped changing for the
// stability window. It watches the parent directory because office suites
// and sync clients replace the file instead of writing it in place.
type Watcher struct {
	path      string
	stability time.Duration
	onChange  func(ctx context.Context)
	logger    *utils.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	cancel   context.CancelFunc
	running  bool
	wg       sync.WaitGroup
	debounce *Debouncer
}

func NewWatcher(path string, stability time.Duration, onChange func(ctx context.Context), logger *utils.Logger) *Watcher {
	if stability <= 0 {
		stability = 5 * time.Second
	}
	return &Watcher{path: path, stability: stability, onChange: onChange, logger: logger}
}

func (w *Watcher) StartWithContext(ctx context.Context) error {
	if w == nil || w.onChange == nil {
		return nil
	}
	if strings.TrimSpace(w.path) == "" {
		return errors.New("feedsync: no workbook path to watch")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.fsw = fsw
	w.cancel = cancel
	w.running = true
	w.debounce = NewDebouncer(w.stability)
	w.wg.Add(1)
	go w.loop(runCtx, fsw, w.debounce)
	w.logger.Printf("watcher: monitoring %s", w.path)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, debounce *Debouncer) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.matches(ev) {
				continue
			}
			debounce.Trigger(func() {
				if ctx.Err() == nil {
					w.onChange(ctx)
				}
			})
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("watcher: %v", err)
		}
	}
}

func (w *Watcher) matches(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return strings.EqualFold(filepath.Base(ev.Name), filepath.Base(w.path))
}

func (w *Watcher) StopWithContext(ctx context.Context) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel, fsw, debounce := w.cancel, w.fsw, w.debounce
	w.cancel, w.fsw, w.debounce = nil, nil, nil
	w.running = false
	w.mu.Unlock()

	cancel()
	debounce.Cancel()
	closeErr := fsw.Close()
	waitDone := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
		return closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}
