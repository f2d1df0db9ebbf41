package config

import (
	"github.com/fsnotify/fsnotify"

	"github.com/vikrant82/elnet-dashboard/internal/logger"
)

// Watch observes the loaded .env file and logs a warning when it changes.
// Configuration is immutable after startup, so the warning is a reminder
// that a restart is required to pick up changes. Returns a stop function.
// If no .env file was loaded, Watch is a no-op.
func (c *Config) Watch() (func(), error) {
	if c.EnvFile == "" {
		return func() {}, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(c.EnvFile); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					logger.Warn("env file changed; restart to apply new configuration",
						"file", c.EnvFile)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("env file watcher error", "error", err)
			}
		}
	}()

	return func() { _ = watcher.Close() }, nil
}
