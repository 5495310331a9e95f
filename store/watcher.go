package store

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/traceviewhq/traceview/errors"
	"github.com/traceviewhq/traceview/logger"
)

// ChangeCallback is called when the capture or its -wal sidecar changes
// on disk. Live-triage captures keep growing while under inspection; a
// change means previously sampled inference may be stale and the session
// should re-acquire.
type ChangeCallback func()

// CaptureWatcher watches a capture file and its -wal sidecar for
// changes, debouncing the rapid event bursts SQLite checkpointing
// produces.
type CaptureWatcher struct {
	capturePath string
	watcher     *fsnotify.Watcher

	mu             sync.Mutex
	callbacks      []ChangeCallback
	debounceTimer  *time.Timer
	debouncePeriod time.Duration

	done chan struct{}
}

// NewCaptureWatcher creates a watcher for the capture at path. The
// containing directory is watched, not the files themselves: the -wal
// sidecar appears and disappears across checkpoints.
func NewCaptureWatcher(path string) (*CaptureWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "failed to watch capture directory %s", dir)
	}

	return &CaptureWatcher{
		capturePath:    path,
		watcher:        w,
		debouncePeriod: 500 * time.Millisecond,
		done:           make(chan struct{}),
	}, nil
}

// OnChange registers a callback invoked after the capture changes.
func (cw *CaptureWatcher) OnChange(callback ChangeCallback) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

// Start begins watching. The watch loop runs until Stop.
func (cw *CaptureWatcher) Start() {
	go cw.watchLoop()
}

// Stop ends watching and releases the fsnotify handle.
func (cw *CaptureWatcher) Stop() error {
	close(cw.done)
	return cw.watcher.Close()
}

func (cw *CaptureWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.isCaptureEvent(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			logger.Logger.Debugw("capture change detected",
				logger.FieldFile, event.Name,
				"op", event.Op.String(),
			)
			cw.scheduleNotify()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logger.Logger.Warnw("capture watcher error", logger.FieldError, err)

		case <-cw.done:
			return
		}
	}
}

// isCaptureEvent filters directory events down to the capture file and
// its SQLite sidecars.
func (cw *CaptureWatcher) isCaptureEvent(name string) bool {
	base := filepath.Base(cw.capturePath)
	got := filepath.Base(name)
	return got == base || got == base+"-wal" || got == base+"-shm" || got == base+"-journal"
}

func (cw *CaptureWatcher) scheduleNotify() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.debounceTimer = time.AfterFunc(cw.debouncePeriod, cw.notify)
}

func (cw *CaptureWatcher) notify() {
	cw.mu.Lock()
	callbacks := make([]ChangeCallback, len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}
