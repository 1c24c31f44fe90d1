package settings

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/workdeck/workdeck/internal/event"
	"github.com/workdeck/workdeck/internal/logging"
)

// Watcher reloads the settings document when it changes on disk and
// republishes the settings-changed event. Filesystem notifications arrive on
// the watcher goroutine; the reload itself is handed to the frame goroutine
// through the bus deferred queue so store access stays single-threaded.
type Watcher struct {
	fw     *fsnotify.Watcher
	store  *Store
	bus    *event.Bus
	logger *logging.Logger
	done   chan struct{}
}

// NewWatcher creates a watcher for the store's document. The containing
// directory is watched, not the file, so saves that replace the file are
// still observed.
func NewWatcher(store *Store, bus *event.Bus, logger *logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.Nop
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating settings watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(store.Path())); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching settings directory: %w", err)
	}
	return &Watcher{
		fw:     fw,
		store:  store,
		bus:    bus,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// Start begins watching. Returns immediately.
func (w *Watcher) Start() {
	go w.run()
}

func (w *Watcher) run() {
	target := filepath.Clean(w.store.Path())
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.bus.Defer(w.reload)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("settings watcher: %v", err)
		}
	}
}

// reload runs on the frame goroutine via the deferred queue.
func (w *Watcher) reload() {
	if err := w.store.Load(); err != nil {
		w.logger.Warn("reloading settings: %v", err)
		return
	}
	w.bus.Publish(event.TypeSettingsChanged, nil)
}

// Stop stops watching and releases the notifier.
func (w *Watcher) Stop() {
	close(w.done)
	_ = w.fw.Close()
}
