package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher holds the current config snapshot and reloads it when the
// file changes on disk. Per-channel settings are resolved fresh on
// every command, so an edit takes effect on the next invocation
// without a restart.
type Watcher struct {
	path    string
	current atomic.Pointer[Config]
}

// NewWatcher creates a Watcher seeded with an already-loaded config.
func NewWatcher(path string, initial *Config) *Watcher {
	w := &Watcher{path: path}
	w.current.Store(initial)
	return w
}

// Snapshot returns the current config. The returned value is shared
// and must be treated as read-only.
func (w *Watcher) Snapshot() *Config {
	return w.current.Load()
}

// Run watches the config file until ctx is cancelled. Editors replace
// files on save, so the parent directory is watched rather than the
// file itself.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return err
	}

	var debounce *time.Timer
	reload := func() {
		cfg, err := Load(w.path)
		if err != nil {
			slog.Warn("config reload failed, keeping previous config", "path", w.path, "error", err)
			return
		}
		w.current.Store(cfg)
		slog.Info("config reloaded", "path", w.path)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Coalesce bursts of events from a single save.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, reload)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config watcher error", "error", err)
		}
	}
}
