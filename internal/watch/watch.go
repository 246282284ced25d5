// Package watch reloads a country data file whenever it changes on disk and
// pushes the new series into a style store.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/junkd0g/worldmap/internal/countrydata"
	"github.com/junkd0g/worldmap/internal/mapcss"
	"github.com/junkd0g/worldmap/internal/style"
)

// DefaultDebounce is used when no debounce duration is configured.
const DefaultDebounce = 250 * time.Millisecond

// Stats counts watcher activity.
type Stats struct {
	Reloads   int
	Errors    int
	LastError error
	LastLoad  time.Time
}

// DataWatcher follows a single data file.
type DataWatcher struct {
	path     string
	store    *style.Store
	logger   *zap.Logger
	debounce time.Duration
	onReload func(mapcss.CountryData)

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	stats   Stats
}

// Option configures a DataWatcher.
type Option func(*DataWatcher)

// WithDebounce sets how long the file must be quiet before it is reloaded.
func WithDebounce(d time.Duration) Option {
	return func(w *DataWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReloadHook registers fn to run after every successful reload, once the
// store has been updated.
func WithReloadHook(fn func(mapcss.CountryData)) Option {
	return func(w *DataWatcher) { w.onReload = fn }
}

// New returns a watcher for path feeding store.
func New(path string, store *style.Store, logger *zap.Logger, opts ...Option) *DataWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &DataWatcher{
		path:     filepath.Clean(path),
		store:    store,
		logger:   logger.Named("watch"),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It is non-blocking; events are handled on a
// separate goroutine until ctx is done or Stop is called.
func (w *DataWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors replace files on save, so the directory is watched, not the file.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return multierr.Append(fmt.Errorf("failed to watch %s: %w", w.path, err), fw.Close())
	}

	w.watcher = fw
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.run(ctx, fw, w.stopCh, w.doneCh)

	w.logger.Info("Watching", zap.String("path", w.path))
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *DataWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	fw, stopCh, doneCh := w.watcher, w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)
	<-doneCh

	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	w.logger.Debug("Stopped")
	return nil
}

// Reload reads the file and pushes its content into the store.
func (w *DataWatcher) Reload() error {
	data, err := countrydata.LoadFile(w.path)
	if err != nil {
		w.mu.Lock()
		w.stats.Errors++
		w.stats.LastError = err
		w.mu.Unlock()
		return err
	}

	w.store.SetCountryData(data)

	w.mu.Lock()
	w.stats.Reloads++
	w.stats.LastError = nil
	w.stats.LastLoad = time.Now()
	w.mu.Unlock()

	w.logger.Info("Reloaded country data", zap.Int("countries", len(data)))
	if w.onReload != nil {
		w.onReload(data)
	}
	return nil
}

// Stats returns a copy of the watcher statistics.
func (w *DataWatcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *DataWatcher) run(ctx context.Context, fw *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-stopCh:
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("Data file changed", zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", zap.Error(err))

		case <-timer.C:
			if err := w.Reload(); err != nil {
				w.logger.Warn("Keeping previous country data", zap.Error(err))
			}
		}
	}
}
