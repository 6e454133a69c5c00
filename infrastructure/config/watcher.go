package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the configuration when its YAML file changes on
// disk. Editors often replace files via rename, so the parent
// directory is watched rather than the file itself.
type Watcher struct {
	path    string
	logger  *zap.Logger
	onApply func(*Config)
}

// NewWatcher creates a watcher for the given config file. onApply is
// invoked with each successfully reloaded configuration.
func NewWatcher(path string, logger *zap.Logger, onApply func(*Config)) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{path: path, logger: logger, onApply: onApply}
}

// Run watches until the context is cancelled. Reload errors are logged
// and the previous configuration stays in effect.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	// Debounce: editors fire several events per save
	var pending *time.Timer
	reload := func() {
		cfg, err := LoadConfig()
		if err != nil {
			w.logger.Warn("config reload failed", zap.Error(err))
			return
		}
		w.logger.Info("config reloaded", zap.String("path", w.path))
		w.onApply(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(200*time.Millisecond, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}
