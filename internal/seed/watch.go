package seed

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jpalmerr/flightdeck/flight"
)

// Watch monitors path and calls onChange with the reloaded flights each
// time the file is written or replaced. It runs until ctx is cancelled.
//
// A reload that fails to parse is logged and skipped; onChange is not
// called.
func Watch(ctx context.Context, path string, now func() time.Time, onChange func([]flight.Request), logger *slog.Logger) error {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return err
	}

	logger.Info("watching seed file", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				// editors often save by renaming a new file over the old
				// one, which drops the watch; pick up the replacement
				if err := watcher.Add(path); err != nil {
					logger.Warn("seed file gone, watch suspended", "path", path, "error", err)
					continue
				}
			default:
				continue
			}

			reqs, err := LoadFile(path, now())
			if err != nil {
				logger.Error("seed reload failed", "path", path, "error", err)
				continue
			}

			logger.Info("seed file reloaded", "path", path, "flights", len(reqs))
			onChange(reqs)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("seed watcher error", "error", err)
		}
	}
}
