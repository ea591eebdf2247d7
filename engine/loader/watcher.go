package loader

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports asset files that changed on disk. Bursts of events on one file are
// coalesced into a single change after the debounce interval.
type Watcher interface {
	// Add watches an asset file, or every supported asset file in a directory.
	//
	// Parameters:
	//   - path: a file or directory
	//
	// Returns:
	//   - error: error if the path cannot be watched
	Add(path string) error

	// Changes returns the channel changed asset paths are delivered on.
	//
	// Returns:
	//   - <-chan string: cleaned paths of changed assets
	Changes() <-chan string

	// Run forwards debounced changes until ctx is cancelled or the watcher is closed.
	//
	// Parameters:
	//   - ctx: the context that stops the watcher
	//
	// Returns:
	//   - error: ctx.Err() on cancellation, nil when closed
	Run(ctx context.Context) error

	// Close stops watching and releases the file handles.
	//
	// Returns:
	//   - error: error from the underlying watcher
	Close() error
}

type watcher struct {
	fs       *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration

	mu     sync.Mutex
	files  map[string]bool
	dirs   map[string]bool
	timers map[string]*time.Timer

	fired   chan string
	changes chan string
	done    chan struct{}
	once    sync.Once
}

var _ Watcher = &watcher{}

// NewWatcher creates a Watcher.
//
// Parameters:
//   - options: functional options to configure the watcher
//
// Returns:
//   - Watcher: the new watcher
//   - error: error if the OS watcher cannot be created
func NewWatcher(options ...WatcherBuilderOption) (Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{
		fs:       fs,
		logger:   zap.NewNop(),
		debounce: 100 * time.Millisecond,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		timers:   make(map[string]*time.Timer),
		fired:    make(chan string, 16),
		changes:  make(chan string, 16),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}
	return w, nil
}

func (w *watcher) Add(path string) error {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	dir := path
	w.mu.Lock()
	if info.IsDir() {
		w.dirs[path] = true
	} else {
		w.files[path] = true
		dir = filepath.Dir(path)
	}
	w.mu.Unlock()

	// editors replace files on save, so the directory is watched rather than the file
	return w.fs.Add(dir)
}

func (w *watcher) Changes() <-chan string {
	return w.changes
}

func (w *watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return ctx.Err()

		case <-w.done:
			w.stopTimers()
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("asset watcher error", zap.Error(err))

		case path := <-w.fired:
			w.mu.Lock()
			delete(w.timers, path)
			w.mu.Unlock()

			w.logger.Debug("asset changed", zap.String("path", path))
			select {
			case w.changes <- path:
			case <-ctx.Done():
				return ctx.Err()
			case <-w.done:
				return nil
			}
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.tracked(path) {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		select {
		case w.fired <- path:
		case <-w.done:
		}
	})
}

// tracked reports whether path is a watched file or a supported asset in a watched directory.
func (w *watcher) tracked(path string) bool {
	if w.files[path] {
		return true
	}
	if !w.dirs[filepath.Dir(path)] {
		return false
	}
	_, err := FormatForPath(path)
	return err == nil
}

func (w *watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for p, t := range w.timers {
		t.Stop()
		delete(w.timers, p)
	}
}

func (w *watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}
