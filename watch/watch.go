// Package watch re-runs a preview when migration scripts change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ridoystarlord/migraview/debug"
)

// DefaultDebounce is the quiet period after the last event before the
// callback runs.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a migrations directory for script changes
type Watcher struct {
	dir      string
	callback func() error
	watcher  *fsnotify.Watcher

	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// OnError receives callback and watcher errors. Nil drops them.
	OnError func(error)
}

// NewWatcher creates a watcher over dir.
func NewWatcher(dir string, callback func() error) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	return &Watcher{
		dir:      absDir,
		callback: callback,
		watcher:  watcher,
		Debounce: DefaultDebounce,
	}, nil
}

// Run calls the callback once, then again after every burst of script
// changes, until ctx is done. Callbacks never overlap.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.callback(); err != nil {
		return fmt.Errorf("initial callback failed: %w", err)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	debounceTimer := time.NewTimer(debounce)
	debounceTimer.Stop()
	var debounceCh <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isScriptEvent(event) {
				continue
			}
			debug.Debug("Script changed", "file", event.Name, "op", event.Op.String())
			debounceTimer.Reset(debounce)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			debounceCh = nil
			if err := w.callback(); err != nil {
				w.report(fmt.Errorf("watch callback error: %w", err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.report(fmt.Errorf("watch error: %w", err))

		case <-ctx.Done():
			debounceTimer.Stop()
			return nil
		}
	}
}

func (w *Watcher) report(err error) {
	debug.Error("Watcher", "error", err)
	if w.OnError != nil {
		w.OnError(err)
	}
}

func isScriptEvent(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".php") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
