// Package style keeps a style node in sync with the map stylesheet.
package style

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/junkd0g/worldmap/internal/mapcss"
)

// NodeID is the id of the style node owned by an Injector.
const NodeID = "vue-world-map-style"

var (
	// ErrNotMounted is returned when rendering before Mount or after Unmount.
	ErrNotMounted = errors.New("style injector is not mounted")
	// ErrAlreadyMounted is returned by a second Mount.
	ErrAlreadyMounted = errors.New("style injector is already mounted")
)

// Injector owns one style node and rewrites it whenever the store changes.
type Injector struct {
	store  *Store
	logger *zap.Logger

	mu          sync.Mutex
	node        StyleNode
	css         string
	unsubscribe func()
	lastErr     error
}

// NewInjector returns an unmounted injector reading props from store.
func NewInjector(store *Store, logger *zap.Logger) *Injector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Injector{store: store, logger: logger.Named("style")}
}

// Mount creates the style node in doc, renders it and starts following the
// store.
func (in *Injector) Mount(doc Document) error {
	in.mu.Lock()
	if in.node != nil {
		in.mu.Unlock()
		return ErrAlreadyMounted
	}
	node, err := doc.CreateStyleNode(NodeID)
	if err != nil {
		in.mu.Unlock()
		return fmt.Errorf("failed to create style node: %w", err)
	}
	in.node = node
	in.css = ""
	in.mu.Unlock()

	if err := in.RenderMapCSS(); err != nil {
		_ = in.Unmount()
		return err
	}

	unsubscribe := in.store.Subscribe(func(Props) {
		if err := in.RenderMapCSS(); err != nil {
			in.logger.Warn("Keeping previous stylesheet", zap.Error(err))
		}
	})
	in.mu.Lock()
	in.unsubscribe = unsubscribe
	in.mu.Unlock()

	in.logger.Debug("Mounted", zap.String("id", NodeID))
	return nil
}

// RenderMapCSS recomputes the stylesheet from the current props and writes it
// to the node. The node is left untouched when the text did not change.
//
// Props are read under the injector lock so that concurrent store updates
// always leave the latest props rendered.
func (in *Injector) RenderMapCSS() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.node == nil {
		return ErrNotMounted
	}
	props := in.store.Props()
	css, err := mapcss.Stylesheet(props.CountryData, props.Colors)
	if err != nil {
		in.lastErr = err
		return fmt.Errorf("failed to compute stylesheet: %w", err)
	}
	in.lastErr = nil
	if css == in.css {
		return nil
	}

	in.node.SetContent(css)
	in.css = css
	in.logger.Debug("Stylesheet updated",
		zap.Int("countries", len(props.CountryData)),
		zap.Int("bytes", len(css)))
	return nil
}

// CSS returns the stylesheet last written to the node.
func (in *Injector) CSS() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.css
}

// Err returns the error of the last render attempt, if it failed.
func (in *Injector) Err() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.lastErr
}

// Unmount removes the style node and stops following the store.
func (in *Injector) Unmount() error {
	in.mu.Lock()
	node, unsubscribe := in.node, in.unsubscribe
	in.node, in.unsubscribe, in.css = nil, nil, ""
	in.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if node == nil {
		return ErrNotMounted
	}
	if err := node.Remove(); err != nil {
		return fmt.Errorf("failed to remove style node: %w", err)
	}
	in.logger.Debug("Unmounted", zap.String("id", NodeID))
	return nil
}
