package scanner

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is one debounced change to a content file.
type Event struct {
	Path    string
	Removed bool
}

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Config   Config
	Debounce time.Duration
	Logger   *slog.Logger
}

// DefaultWatchOptions returns the default content globs with a 200ms debounce.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Config:   DefaultConfig(),
		Debounce: 200 * time.Millisecond,
	}
}

// Watcher watches a content root and reports changed files in batches.
//
// Events arriving within the debounce window are folded into one callback;
// the last event for a path wins.
//
// **Usage:**
//
//	w, err := scanner.NewWatcher(root, scanner.DefaultWatchOptions(), func(evs []scanner.Event) {
//	    rebuild(evs)
//	})
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	options  WatchOptions
	onChange func([]Event)
	logger   *slog.Logger

	// Debouncing
	pending map[string]bool
	timer   *time.Timer
	batches int
	pmu     sync.Mutex

	// cbMu serializes onChange; cbStopped is set under it by Stop.
	cbMu      sync.Mutex
	cbStopped bool

	// Lifecycle
	started  bool
	stopped  bool
	stopChan chan struct{}
	done     chan struct{}
	mu       sync.Mutex
}

// NewWatcher creates a watcher rooted at root. onChange runs on a timer
// goroutine, never concurrently with itself and never after Stop returns.
// onChange must not call Stop.
func NewWatcher(root string, options WatchOptions, onChange func([]Event)) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("watcher requires a change callback")
	}
	if err := options.Config.Validate(); err != nil {
		return nil, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	if options.Debounce <= 0 {
		options.Debounce = 200 * time.Millisecond
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:  fw,
		root:     absRoot,
		options:  options,
		onChange: onChange,
		logger:   logger,
		pending:  make(map[string]bool),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Root returns the absolute directory being watched.
func (w *Watcher) Root() string {
	return w.root
}

// Start registers the directory tree and begins the event loop.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}

	if err := w.addTree(w.root); err != nil {
		return err
	}

	w.started = true
	w.logger.Info("Content watcher started", "root", w.root)
	go w.eventLoop()
	return nil
}

// Stop stops the watcher and drops any pending batch. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	close(w.stopChan)
	w.mu.Unlock()

	w.pmu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = make(map[string]bool)
	w.pmu.Unlock()

	// Waits for an in-flight callback.
	w.cbMu.Lock()
	w.cbStopped = true
	w.cbMu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}
	w.logger.Info("Content watcher stopped")
	return err
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignoredDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if path == w.root {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) ignoredDir(path string) bool {
	rel := relative(w.root, path)
	return w.options.Config.Excluded(rel) || w.options.Config.Excluded(rel+"/")
}

func (w *Watcher) eventLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Content watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.ignoredDir(path) {
				if err := w.addTree(path); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !w.options.Config.Included(relative(w.root, path)) {
		return
	}

	w.logger.Debug("Content event", "op", event.Op.String(), "file", path)

	switch {
	case event.Op.Has(fsnotify.Write), event.Op.Has(fsnotify.Create):
		w.queue(path, false)
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.queue(path, true)
	}
}

// queue records the change and restarts the quiet-period timer.
func (w *Watcher) queue(path string, removed bool) {
	w.pmu.Lock()
	defer w.pmu.Unlock()

	w.pending[path] = removed
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.options.Debounce, w.fire)
}

func (w *Watcher) fire() {
	w.pmu.Lock()
	if len(w.pending) == 0 {
		w.pmu.Unlock()
		return
	}
	events := make([]Event, 0, len(w.pending))
	for path, removed := range w.pending {
		events = append(events, Event{Path: path, Removed: removed})
	}
	w.pending = make(map[string]bool)
	w.timer = nil
	w.batches++
	w.pmu.Unlock()

	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })

	w.cbMu.Lock()
	defer w.cbMu.Unlock()
	if w.cbStopped {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.Warn("Content change handler panicked", "files", len(events), "panic", r)
		}
	}()
	w.onChange(events)
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() WatcherStats {
	w.pmu.Lock()
	pending, batches := len(w.pending), w.batches
	w.pmu.Unlock()

	w.mu.Lock()
	running := w.started && !w.stopped
	w.mu.Unlock()

	return WatcherStats{
		PendingChanges: pending,
		Batches:        batches,
		IsRunning:      running,
	}
}

// WatcherStats contains watcher statistics.
type WatcherStats struct {
	PendingChanges int
	Batches        int
	IsRunning      bool
}
