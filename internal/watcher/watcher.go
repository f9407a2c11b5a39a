// Package watcher reports external modifications to the files bound to open
// documents.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/hyprtext/internal/debounce"
)

// DefaultDelay coalesces the burst of events a single save produces.
const DefaultDelay = 200 * time.Millisecond

// Callback receives the canonical path of a file that changed on disk.
type Callback func(path string)

// Watcher watches the parent directories of a set of files. Directories are
// watched rather than files so replace-by-rename saves keep being observed.
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger *slog.Logger
	delay  time.Duration
	sched  debounce.Scheduler

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]int
}

// New creates a Watcher. A non-positive delay uses DefaultDelay.
func New(logger *slog.Logger, delay time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		fsw:    fsw,
		logger: logger,
		delay:  delay,
		sched:  debounce.Clock{},
		files:  make(map[string]struct{}),
		dirs:   make(map[string]int),
	}, nil
}

// Sync replaces the watched file set. Empty paths are skipped.
func (w *Watcher) Sync(paths []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]int)
	for _, p := range paths {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if _, dup := files[p]; dup {
			continue
		}
		files[p] = struct{}{}
		dirs[filepath.Dir(p)]++
	}

	for dir := range w.dirs {
		if _, keep := dirs[dir]; keep {
			continue
		}
		if err := w.fsw.Remove(dir); err != nil {
			w.logger.Debug("watcher: remove dir failed", slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}

	var firstErr error
	for dir := range dirs {
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Warn("watcher: add dir failed", slog.String("dir", dir), slog.String("error", err.Error()))
			delete(dirs, dir)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		w.logger.Debug("watcher: watching dir", slog.String("dir", dir))
	}

	w.files = files
	w.dirs = dirs
	return firstErr
}

// Watched reports whether path is in the watched set.
func (w *Watcher) Watched(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[filepath.Clean(path)]
	return ok
}

// Run processes file events until ctx is cancelled, calling cb once per
// quiet period for every watched file that was written or replaced.
func (w *Watcher) Run(ctx context.Context, cb Callback) error {
	deb := debounce.New[string](w.delay, w.sched, nil)
	defer deb.CancelAll()

	w.logger.Info("watcher: started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			path := filepath.Clean(ev.Name)
			if !w.Watched(path) {
				continue
			}
			deb.Trigger(path, func() {
				if ctx.Err() != nil {
					return
				}
				w.logger.Debug("watcher: changed", slog.String("path", path))
				cb(path)
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
