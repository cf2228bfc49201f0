// Package watch rebuilds a statute whenever its source or annotation files
// change on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"gopkg.in/fsnotify.v1"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls a rebuild function when any of a set of files changes.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	rebuild  func() error
	log      *slog.Logger
}

// New creates a Watcher for the given files. Empty paths are ignored.
func New(paths []string, debounce time.Duration, rebuild func() error, log *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	files := make(map[string]bool, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		files[absPath(path)] = true
	}
	return &Watcher{
		files:    files,
		debounce: debounce,
		rebuild:  rebuild,
		log:      log,
	}
}

// Run rebuilds once, then again after every burst of changes, until ctx is
// cancelled. Rebuild failures are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.files) == 0 {
		return fmt.Errorf("no files to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Directories are watched rather than files so that editors which save
	// by renaming a temporary file over the original are still seen.
	dirs := make(map[string]bool)
	for file := range w.files {
		dir := filepath.Dir(file)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	w.runRebuild("initial")

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	var changed string
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.files[absPath(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("change detected", "file", event.Name, "op", event.Op.String())
			changed = event.Name
			timer.Reset(w.debounce)

		case <-timer.C:
			w.runRebuild(changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) runRebuild(trigger string) {
	start := time.Now()
	if err := w.rebuild(); err != nil {
		w.log.Error("rebuild failed", "trigger", trigger, "error", err)
		return
	}
	w.log.Info("rebuilt", "trigger", trigger, "duration_ms", time.Since(start).Milliseconds())
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(path)
}
