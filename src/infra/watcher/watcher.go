package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events an editor produces on save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a single file and emits an event once writes settle.
// The parent directory is watched so that atomic replaces (write to a temp
// file, then rename) are noticed as well.
type Watcher struct {
	watcher       *fsnotify.Watcher
	filePath      string
	debounce      time.Duration
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	running       bool
	stopChan      chan struct{}
	eventChan     chan<- FileEvent
}

// NewWatcher creates a new file system watcher
func NewWatcher(eventChan chan<- FileEvent, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:   watcher,
		debounce:  debounce,
		eventChan: eventChan,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins watching filePath for changes
func (w *Watcher) Start(ctx context.Context, filePath string) error {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return err
	}
	w.filePath = abs
	slog.Info("Starting file watcher", "path", abs)

	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	w.running = true

	// Start the event loop
	go w.watchLoop(ctx)

	slog.Info("File watcher started successfully")
	return nil
}

// Stop stops the file watcher
func (w *Watcher) Stop() {
	if !w.running {
		return
	}

	slog.Info("Stopping file watcher", "path", w.filePath)
	w.running = false
	close(w.stopChan)

	// Cancel any pending debounce timer
	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent processes a single file system event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.filePath {
		return
	}

	eventType := classify(event.Op)
	if eventType == "" {
		return
	}
	slog.Debug("Detected file change", "file", event.Name, "op", event.Op.String())

	// Start or reset the debounce timer
	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		w.emitDebounceEvent(eventType)
	})
}

func classify(op fsnotify.Op) FileEventType {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return FileRemoved
	case op.Has(fsnotify.Create):
		return FileCreated
	case op.Has(fsnotify.Write):
		return FileModified
	default:
		return ""
	}
}

// emitDebounceEvent emits a file event after debounce period
func (w *Watcher) emitDebounceEvent(eventType FileEventType) {
	event := FileEvent{
		Path:      w.filePath,
		EventType: eventType,
		Timestamp: time.Now(),
	}

	select {
	case w.eventChan <- event:
		slog.Debug("Emitted file event after debounce", "path", event.Path, "type", event.EventType)
	default:
		slog.Warn("Event channel full, dropping file event", "path", event.Path)
	}
}
