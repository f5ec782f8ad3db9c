package watch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Change is a data file that was created, written, removed or renamed.
type Change struct {
	Name string
	Op   string
}

// Watch reports changes to *.json files in dir until ctx is done.
// onChange runs on the watcher goroutine and should return quickly.
func Watch(ctx context.Context, logger *zap.Logger, dir string, onChange func(Change)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Info("watching data directory", zap.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".json" || !relevant(event) {
				continue
			}
			logger.Debug("data file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			onChange(Change{Name: filepath.Base(event.Name), Op: event.Op.String()})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
