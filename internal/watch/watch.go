// Package watch re-runs specs when source files change. It debounces
// bursts of filesystem events (editors typically emit several per save)
// into a single callback.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/garyf/gospec/internal/ctxlog"
	"github.com/garyf/gospec/internal/fsutil"
)

// Watcher observes directory trees and invokes a callback with the set of
// changed Go files after a quiet period.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	onChange  func(paths []string)
}

// New returns a watcher that calls onChange after debounce of quiet.
func New(debounce time.Duration, onChange func(paths []string)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		debounce:  debounce,
		onChange:  onChange,
	}, nil
}

// AddRecursive watches root and every non-hidden, non-vendor directory
// under it. fsnotify watches are per-directory, so new subdirectories
// created later are picked up as their create events arrive.
func (w *Watcher) AddRecursive(root string) error {
	dirs, err := fsutil.Dirs(root)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return err
		}
	}
	return nil
}

// Run processes events until the context is cancelled. It blocks.
func (w *Watcher) Run(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	var (
		pending = make(map[string]bool)
		timer   *time.Timer
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("File change observed.", "path", event.Name, "op", event.Op.String())
			if event.Op.Has(fsnotify.Create) {
				// A new directory needs its own watch.
				if err := w.fsWatcher.Add(event.Name); err == nil {
					logger.Debug("Watching new path.", "path", event.Name)
				}
			}
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			pending = make(map[string]bool)
			fire = nil
			logger.Debug("Debounce window closed.", "changed", len(paths))
			w.onChange(paths)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error.", "error", err)
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// relevant filters events down to Go source changes and new directories.
func relevant(event fsnotify.Event) bool {
	if event.Op.Has(fsnotify.Chmod) {
		return false
	}
	base := filepath.Base(event.Name)
	if base == ".gospec.hcl" {
		return true
	}
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, ".go") || filepath.Ext(base) == ""
}
