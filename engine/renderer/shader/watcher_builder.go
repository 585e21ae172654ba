package shader

import (
	"time"

	"github.com/charmbracelet/log"
)

// WatcherBuilderOption is a functional option for configuring a Watcher.
type WatcherBuilderOption func(*watcherImpl)

// WithDebounce sets how long the watcher waits after the last file event before reparsing.
//
// Parameters:
//   - d: the debounce delay; non-positive values keep the default
//
// Returns:
//   - WatcherBuilderOption: functional option to set the debounce delay
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcherImpl) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the logger used for reload and error messages.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - WatcherBuilderOption: functional option to set the logger
func WithWatcherLogger(logger *log.Logger) WatcherBuilderOption {
	return func(w *watcherImpl) {
		w.logger = logger
	}
}
