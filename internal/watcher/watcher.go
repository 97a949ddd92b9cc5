// Package watcher re-runs validation when the corpus changes on disk.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch starts an fsnotify watcher on the corpus root and calls cb after
// each debounced batch of relevant changes, until ctx is cancelled.
//
// Validation is corpus-wide (cross-references span documents), so events are
// coalesced into a single trigger rather than handled per file; the parse
// cache keeps the re-run cheap. New directories created at runtime are
// automatically added to the watch list.
func Watch(ctx context.Context, root string, logger *slog.Logger, debounce time.Duration, cb func()) error {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var trigger *time.Timer
	var triggerCh <-chan time.Time

	schedule := func() {
		if trigger == nil {
			trigger = time.NewTimer(debounce)
			triggerCh = trigger.C
		} else {
			trigger.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if trigger != nil {
				trigger.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-triggerCh:
			cb()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// New directories: extend the watch list and re-validate, since
			// they may already contain notes.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}

			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
