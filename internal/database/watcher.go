package database

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bates64/vscode-star-rod/pkg/core/log"
	"github.com/bates64/vscode-star-rod/pkg/core/srerror"
)

// DefaultDebounce is how long the watcher waits after the last
// filesystem event before reloading.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads the database when its directory changes. Every
// relevant event triggers a full reload after a debounce window; the
// most recently completed load wins.
type Watcher struct {
	loader   *Loader
	logger   *log.Logger
	debounce time.Duration
	onReload func(*Database)

	notify   *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	running  bool
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	Logger *log.Logger

	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration
}

// NewWatcher creates a watcher over a loader's directory. onReload
// receives each successfully loaded snapshot.
func NewWatcher(loader *Loader, onReload func(*Database), opts WatcherOptions) *Watcher {
	logger := opts.Logger
	if logger == nil {
		logger = log.GetDefault()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		loader:   loader,
		logger:   logger.WithField("component", "database-watcher"),
		debounce: debounce,
		onReload: onReload,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching. It is a no-op when already running.
func (w *Watcher) Start(ctx context.Context) error {
	if w.running {
		return nil
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return srerror.Wrap(err, "failed to create filesystem watcher").
			WithCode(srerror.CodeDatabaseError).
			WithOperation("database.Watch")
	}
	w.notify = notify

	if err := w.notify.Add(w.loader.Root()); err != nil {
		w.notify.Close()
		return srerror.Wrapf(err, "failed to watch %q", w.loader.Root()).
			WithCode(srerror.CodeDatabaseError).
			WithOperation("database.Watch")
	}
	// The subdirectories may not exist yet; watch what does.
	for _, sub := range []string{"types", "flags"} {
		dir := filepath.Join(w.loader.Root(), sub)
		if err := w.notify.Add(dir); err != nil {
			w.logger.Debug("not watching subdirectory", log.Fields{"dir": dir, "error": err.Error()})
		}
	}

	w.running = true
	w.logger.Info("watching database directory", log.Fields{"dir": w.loader.Root()})

	go w.watchLoop(ctx)
	return nil
}

// watchLoop handles filesystem events until stopped
func (w *Watcher) watchLoop(ctx context.Context) {
	defer func() {
		w.running = false
		w.notify.Close()
	}()

	// Armed after the first relevant event; every further event pushes
	// the reload out again until the directory goes quiet.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stopping database watcher (context cancelled)")
			return

		case <-w.stopCh:
			w.logger.Info("stopping database watcher (stop signal)")
			return

		case event, ok := <-w.notify.Events:
			if !ok {
				return
			}
			if !isDatabaseFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.Debug("database file changed", log.Fields{
				"file": filepath.Base(event.Name),
				"op":   event.Op.String(),
			})
			timer.Reset(w.debounce)

		case <-timer.C:
			w.reload()

		case err, ok := <-w.notify.Errors:
			if !ok {
				return
			}
			w.logger.ErrorWithErr("watcher error", err)
		}
	}
}

// reload performs one full load and hands the snapshot to the callback.
func (w *Watcher) reload() {
	db, err := w.loader.Load()
	if err != nil {
		w.logger.WarnWithErr("database reload failed", err)
		return
	}

	stats := db.Stats()
	w.logger.Info("database reloaded", log.Fields{
		"entries": stats.Entries,
		"errors":  stats.Errors,
	})

	if w.onReload != nil {
		w.onReload(db)
	}
}

// Stop ends the watch loop. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

func isDatabaseFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lib", ".enum", ".flags":
		return true
	}
	return false
}
