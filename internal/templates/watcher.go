package templates

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonesrussell/autoload-next-post/infrastructure/logger"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher re-scans known post types when the theme changes on disk.
type Watcher struct {
	locator  *Locator
	fs       *fsnotify.Watcher
	debounce time.Duration
	log      logger.Logger
}

// NewWatcher watches every root and each candidate directory that exists.
func NewWatcher(locator *Locator, log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}

	w := &Watcher{locator: locator, fs: fsw, debounce: defaultDebounce, log: log}
	watched, err := w.addDirectories()
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if watched == 0 {
		_ = fsw.Close()
		return nil, errors.New("no theme directories to watch")
	}

	log.Info("Watching theme directories", logger.Int("count", watched))
	return w, nil
}

// addDirectories watches the roots and every candidate directory present on
// disk. Adding an already watched path is a no-op.
func (w *Watcher) addDirectories() (int, error) {
	watched := 0
	for _, root := range w.locator.roots {
		for _, dir := range append([]string{""}, w.locator.dirs...) {
			path := filepath.Join(root, filepath.FromSlash(dir))
			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				continue
			}
			if err := w.fs.Add(path); err != nil {
				return watched, fmt.Errorf("watch %s: %w", path, err)
			}
			watched++
		}
	}
	return watched, nil
}

// Watched lists the directories currently watched.
func (w *Watcher) Watched() []string {
	return w.fs.WatchList()
}

// Run blocks until ctx is cancelled. Bursts of events within the debounce
// window trigger a single rescan.
func (w *Watcher) Run(ctx context.Context) {
	defer func() { _ = w.fs.Close() }()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				w.watchCreated(event.Name)
			}
			if !pending {
				pending = true
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("Theme watcher error", logger.Error(err))

		case <-timer.C:
			pending = false
			w.log.Debug("Theme changed, rescanning templates")
			w.locator.Rescan(ctx)
		}
	}
}

// watchCreated picks up candidate directories created after startup,
// including nested ones made in one step such as template-parts/post/.
func (w *Watcher) watchCreated(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if _, err := w.addDirectories(); err != nil {
		w.log.Warn("Could not watch new theme directory",
			logger.String("path", path),
			logger.Error(err),
		)
	}
}
