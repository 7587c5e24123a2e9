package internal

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	pkgconfig "github.com/starford/filebridge/pkg/config"
)

const reloadDebounce = 200 * time.Millisecond

// WatchConfig watches the config file at path and applies app.log_level to
// level whenever the file changes, until ctx is cancelled. Other settings
// require a restart. An edit that fails to load or validate is logged and
// ignored.
//
// The parent directory is watched rather than the file itself, because
// editors commonly save by writing a new file and renaming it into place.
func WatchConfig(ctx context.Context, path string, level *slog.LevelVar, logger *slog.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("config watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("config watcher: stopped")
			return nil

		case <-timerCh:
			timerCh = nil
			reloadLogLevel(abs, level, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			timerCh = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func reloadLogLevel(path string, level *slog.LevelVar, logger *slog.Logger) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		logger.Warn("config watcher: reload failed", slog.String("error", err.Error()))
		return
	}
	if cfg.App.LogLevel == level.Level() {
		return
	}
	level.Set(cfg.App.LogLevel)
	logger.Info("config watcher: log level changed", slog.String("log_level", cfg.App.LogLevel.String()))
}
