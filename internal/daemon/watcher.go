package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bayoss/landscape2/internal/config"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/observability"
)

// Default debounce settings for the watch mode.
const (
	DefaultQuietWindow = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
)

// Watcher rebuilds the landscape whenever one of its local inputs changes:
// the data file, the settings file or any file in the logos directory.
// Remote inputs are not watched.
type Watcher struct {
	runner    *Runner
	debouncer *Debouncer

	files map[string]bool // absolute paths of watched files
	dirs  map[string]bool // directories whose every entry is watched
}

// NewWatcher prepares a watcher over the local inputs of cfg. It fails when
// none of the inputs is local.
func NewWatcher(runner *Runner, cfg *config.BuildConfig, dc DebouncerConfig) (*Watcher, error) {
	if dc.CheckBuildRunning == nil {
		dc.CheckBuildRunning = runner.Running
	}
	d, err := NewDebouncer(dc)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		runner:    runner,
		debouncer: d,
		files:     make(map[string]bool),
		dirs:      make(map[string]bool),
	}
	for _, ref := range []string{cfg.DataSource, cfg.SettingsSource} {
		if ref == "" || config.IsURL(ref) {
			continue
		}
		abs, err := filepath.Abs(ref)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to resolve watched file").
				WithContext("path", ref).
				Build()
		}
		w.files[abs] = true
	}
	if cfg.Logos.Path != "" {
		abs, err := filepath.Abs(cfg.Logos.Path)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to resolve logos directory").
				WithContext("path", cfg.Logos.Path).
				Build()
		}
		w.dirs[abs] = true
	}
	if len(w.files) == 0 && len(w.dirs) == 0 {
		return nil, errors.ConfigError("nothing to watch: data, settings and logos are all remote").Build()
	}
	return w, nil
}

// Run builds once, then rebuilds on every debounced change until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	// Parent directories are watched rather than the files themselves so
	// editors that replace files through a rename keep being tracked.
	watched := make(map[string]bool)
	for f := range w.files {
		watched[filepath.Dir(f)] = true
	}
	for d := range w.dirs {
		watched[d] = true
	}
	for dir := range watched {
		if err := fw.Add(dir); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch directory").
				WithContext("path", dir).
				Build()
		}
		observability.DebugContext(ctx, "Watching directory", logfields.Path(dir))
	}

	go w.debouncer.Run(ctx)

	_, _ = w.runner.Build(ctx, "initial")
	observability.InfoContext(ctx, "Watching landscape inputs for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				observability.DebugContext(ctx, "Input changed", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
				w.debouncer.Request(filepath.Base(ev.Name))
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			observability.ErrorContext(ctx, "File watcher error", logfields.Error(err))
		case t := <-w.debouncer.C():
			_, _ = w.runner.Build(ctx, "change:"+t.LastReason)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(ev.Name)
	return w.files[name] || w.dirs[filepath.Dir(name)]
}
