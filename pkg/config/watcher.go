package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of writes from editors into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads the item file when it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	changes  chan *File

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for the item file at path.
func NewWatcher(path string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		changes:  make(chan *File, 1),
	}
}

// Changes delivers every successfully reloaded file. Only the latest pending
// file is kept if the consumer falls behind.
func (w *Watcher) Changes() <-chan *File {
	return w.changes
}

// Run watches until ctx is canceled. The parent directory is watched so
// atomic saves (write temp, rename over) are seen. If that directory cannot
// be watched, Run logs it and idles until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		// a missing item file is allowed, so a missing parent only disables reloads
		slog.Warn("item file reloads disabled", "dir", dir, "error", err)
		<-ctx.Done()
		return nil
	}

	slog.Info("watching item file", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("item file event", "op", event.Op.String(), "path", event.Name)
			w.schedule()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) reload() {
	f, err := Load(w.path)
	if err != nil {
		slog.Error("failed to reload item file", "path", w.path, "error", err)
		return
	}

	// drop a stale pending file so the newest one wins
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- f:
	default:
	}
}
