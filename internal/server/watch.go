package server

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gallery-gen/internal/logging"
	"gallery-gen/internal/media"

	"github.com/fsnotify/fsnotify"
)

// Watcher coalesces file system events on the content tree into single
// rebuild callbacks, so a burst of writes (an export from an editor, a
// multi-file copy) triggers one rebuild after the dust settles.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	log      *logging.Logger
	onChange func()
}

// NewWatcher creates a watcher that invokes onChange after events have
// been quiet for the debounce interval.
func NewWatcher(debounce time.Duration, log *logging.Logger, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{fsw: fsw, debounce: debounce, log: log, onChange: onChange}, nil
}

// Add registers a directory or file to watch.
func (w *Watcher) Add(path string) error {
	if err := w.fsw.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	w.log.Debug("watching %s", path)
	return nil
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run processes events until ctx is canceled. The debounce timer is
// created lazily and reset on every relevant event; it fires only after
// a quiet period.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("change detected: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error: %v", err)

		case <-fire:
			timer = nil
			fire = nil
			w.onChange()
		}
	}
}

// relevant filters out chmod noise, hidden files, and anything that is
// not a gallery input (source images or YAML metadata).
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	if media.ImageExtensions[ext] {
		return true
	}
	return ext == ".yaml" || ext == ".yml"
}
