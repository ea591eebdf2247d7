package loader

import (
	"time"

	"go.uber.org/zap"
)

// WatcherBuilderOption is a functional option for configuring a Watcher via NewWatcher.
type WatcherBuilderOption func(*watcher)

// WithDebounce sets how long a file must stay quiet before its change is reported.
//
// Parameters:
//   - d: the debounce interval, ignored when not positive
//
// Returns:
//   - WatcherBuilderOption: a function that applies the debounce option to a watcher
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the watcher's logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - WatcherBuilderOption: a function that applies the logger option to a watcher
func WithWatcherLogger(logger *zap.Logger) WatcherBuilderOption {
	return func(w *watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}
