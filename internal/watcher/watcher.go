// Package watcher reports changes to open document files, debounced per
// file, as events on a pubsub broker.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/patchlens/internal/log"
	"github.com/zjrosen/patchlens/internal/pubsub"
)

const (
	// FileChanged is published once a watched file has been quiet for the
	// debounce interval after a write.
	FileChanged pubsub.EventType = "file_changed"

	// WatcherError is published for fsnotify errors. Watching continues.
	WatcherError pubsub.EventType = "watcher_error"
)

// WatcherEvent is the payload of watcher events.
type WatcherEvent struct {
	Path  string
	Error error
}

// Config holds watcher configuration options.
type Config struct {
	Debounce time.Duration
}

// DefaultConfig returns the default debounce interval.
func DefaultConfig() Config {
	return Config{Debounce: 250 * time.Millisecond}
}

// Watcher watches the directories of registered files, since editors often
// replace a file by renaming over it, and filters events down to those
// files.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	broker    *pubsub.Broker[WatcherEvent]

	mu     sync.Mutex
	files  map[string]struct{}
	dirs   map[string]int
	timers map[string]*time.Timer

	fired    chan string
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher. Call Start to begin delivering events.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultConfig().Debounce
	}

	return &Watcher{
		fsWatcher: fsw,
		debounce:  debounce,
		broker:    pubsub.NewBroker[WatcherEvent](),
		files:     make(map[string]struct{}),
		dirs:      make(map[string]int),
		timers:    make(map[string]*time.Timer),
		fired:     make(chan string, 16),
		done:      make(chan struct{}),
	}, nil
}

// Broker returns the broker events are published on.
func (w *Watcher) Broker() *pubsub.Broker[WatcherEvent] {
	return w.broker
}

// Add starts watching path. Adding the same file twice is a no-op.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; ok {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = struct{}{}
	log.Debug(log.CatWatcher, "Watching file", "path", abs)
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; !ok {
		return nil
	}
	delete(w.files, abs)
	if t, ok := w.timers[abs]; ok {
		t.Stop()
		delete(w.timers, abs)
	}

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return nil
	}
	delete(w.dirs, dir)
	if err := w.fsWatcher.Remove(dir); err != nil {
		return fmt.Errorf("unwatching directory %s: %w", dir, err)
	}
	return nil
}

// Start begins processing file system events in the background.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop terminates the watcher, closes the broker and releases resources.
// It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		for path, t := range w.timers {
			t.Stop()
			delete(w.timers, path)
		}
		w.mu.Unlock()

		err = w.fsWatcher.Close()
		w.broker.Close()
	})
	return err
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if path, ok := w.relevantPath(event); ok {
				w.schedule(path)
			}

		case path := <-w.fired:
			w.mu.Lock()
			_, watched := w.files[path]
			delete(w.timers, path)
			w.mu.Unlock()
			if watched {
				log.Debug(log.CatWatcher, "File changed", "path", path)
				w.broker.Publish(FileChanged, WatcherEvent{Path: path})
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "Watch error", err)
			w.broker.Publish(WatcherError, WatcherEvent{Error: err})

		case <-w.done:
			return
		}
	}
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

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

// relevantPath reports whether event is a write or create of a watched file.
func (w *Watcher) relevantPath(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return "", false
	}

	path := filepath.Clean(event.Name)
	w.mu.Lock()
	_, ok := w.files[path]
	w.mu.Unlock()
	return path, ok
}
