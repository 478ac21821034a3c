// Package watch consumes a spool directory: submission files dropped in are
// analyzed once their writes settle. Editors and upload tooling save in
// bursts, so events are debounced per path before the handler runs.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/crashb/javascript-analyzer/internal/analyzer"
)

// Handler is called for each settled submission file.
type Handler func(ctx context.Context, path string)

// SpoolWatcher watches one directory for submission files. Handlers run
// sequentially on the watcher goroutine, so a Handler may own per-run state
// that is not safe for concurrent use.
type SpoolWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	dir         string
	handler     Handler
	logger      *zap.Logger
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	FilesCreated  int
	FilesModified int
	FilesDeleted  int
	RunsTriggered int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
	LastEventType string
}

// NewSpoolWatcher creates a watcher over dir. A nil logger disables logging.
func NewSpoolWatcher(dir string, debounce time.Duration, handler Handler, logger *zap.Logger) (*SpoolWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SpoolWatcher{
		watcher:     watcher,
		dir:         dir,
		handler:     handler,
		logger:      logger,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
func (w *SpoolWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		w.logger.Warn("failed to create spool dir", zap.String("dir", w.dir), zap.Error(err))
	}

	if err := w.watcher.Add(w.dir); err != nil {
		w.logger.Warn("initial watch failed", zap.String("dir", w.dir), zap.Error(err))
	} else {
		w.logger.Info("watching spool directory", zap.String("dir", w.dir))
	}

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and waits for the event loop to drain.
func (w *SpoolWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("error closing watcher", zap.Error(err))
	}
	w.logger.Info("spool watcher stopped")
}

// run is the main event loop.
func (w *SpoolWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("spool watcher context cancelled")
			return

		case <-w.stopCh:
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
			w.logger.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processDebouncedEvents(ctx)
		}
	}
}

// handleEvent records one filesystem event into the debounce map.
func (w *SpoolWatcher) handleEvent(event fsnotify.Event) {
	if !isSolutionFile(event.Name) {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}

	w.logger.Debug("spool event", zap.String("type", eventType), zap.String("path", event.Name))

	w.mu.Lock()
	defer w.mu.Unlock()

	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.stats.LastEventType = eventType

	switch eventType {
	case "create":
		w.stats.FilesCreated++
	case "modify":
		w.stats.FilesModified++
	case "delete", "rename":
		w.stats.FilesDeleted++
		delete(w.debounceMap, event.Name)
		return
	}

	w.debounceMap[event.Name] = time.Now()
}

// processDebouncedEvents runs the handler for paths that settled past the
// debounce window.
func (w *SpoolWatcher) processDebouncedEvents(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	toProcess := make([]string, 0)

	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			toProcess = append(toProcess, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range toProcess {
		w.dispatch(ctx, path)
	}
}

// dispatch hands one settled file to the handler.
func (w *SpoolWatcher) dispatch(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			w.logger.Debug("file gone before analysis", zap.String("path", path))
			return
		}
		w.logger.Error("failed to stat settled file", zap.String("path", path), zap.Error(err))
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.stats.RunsTriggered++
	w.mu.Unlock()

	w.handler(ctx, path)
}

// TriggerScan dispatches every submission file already present in the spool
// directory. Useful at startup to drain a backlog.
func (w *SpoolWatcher) TriggerScan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !isSolutionFile(entry.Name()) {
			continue
		}
		w.dispatch(ctx, filepath.Join(w.dir, entry.Name()))
	}

	return nil
}

// GetStats returns the current watcher statistics.
func (w *SpoolWatcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// ResetStats resets the watcher statistics.
func (w *SpoolWatcher) ResetStats() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats = Stats{}
}

// IsWatching reports whether the event loop is running.
func (w *SpoolWatcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func isSolutionFile(name string) bool {
	for _, ext := range analyzer.SolutionExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
