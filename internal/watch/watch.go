// Package watch reports changes below the data directory so views can be
// recomputed.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay groups the bursts of events a single save produces.
const DefaultDelay = 100 * time.Millisecond

// Watcher watches a directory tree.
type Watcher struct {
	dir     string
	delay   time.Duration
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

// New starts watching dir and every directory below it.
func New(dir string, delay time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{dir: dir, delay: delay, logger: logger, watcher: fw}
	if err := w.recursiveAdd(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) recursiveAdd(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func ignored(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".tmp") || strings.HasSuffix(base, "-journal")
}

// Run calls onChange once per burst of changes until ctx is done. It closes
// the watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.logger.Debug("event received", "name", event.Name, "op", event.Op.String())
			if ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				// New day directories must be watched as well.
				if err := w.recursiveAdd(event.Name); err != nil {
					w.logger.Debug("not watching", "path", event.Name, "error", err)
				}
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.delay)
			pending = true

		case <-timer.C:
			pending = false
			onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", err)
		}
	}
}
