// Package watch notifies on changes to the resolved dependency
// manifest so the analysis engine can be rebuilt with fresh
// configuration.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent represents a change to the watched manifest file.
type ChangeEvent struct {
	Path string
	Op   fsnotify.Op
}

// Watcher watches a single manifest file and emits debounced change
// notifications. Editors typically replace-rename on save, so the
// watch is placed on the containing directory and filtered to the one
// path.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
}

// NewWatcher creates a Watcher for the manifest at path.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Run is the main event loop. It reads fsnotify events, filters for
// the manifest path, debounces rapid edits, and sends one ChangeEvent
// per settled burst to out. It blocks until ctx is cancelled or an
// unrecoverable fsnotify error occurs.
func (w *Watcher) Run(ctx context.Context, out chan<- ChangeEvent) error {
	var pending fsnotify.Op
	havePending := false
	timer := time.NewTimer(w.debounce)
	timer.Stop() // don't fire until we have events

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.accept(ev) {
				pending |= ev.Op
				havePending = true
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("fsnotify error", "err", err)

		case <-timer.C:
			if !havePending {
				continue
			}
			change := ChangeEvent{Path: w.path, Op: pending}
			pending = 0
			havePending = false

			select {
			case out <- change:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Close shuts down the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// accept returns true if the event is for the manifest file and
// carries a relevant op.
func (w *Watcher) accept(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
