// Package legend tracks which country the pointer is over.
//
// The controller has two states: idle, where every field is nil, and
// hovering a single country. Hovering the country that is already shown is a
// no-op and does not notify subscribers.
package legend

import (
	"slices"
	"sync"
)

// Position is the pointer position of a hover, in page pixels.
type Position struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// Country is the payload of a hover event.
type Country struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

// State is the legend as shown to the user. Nil fields mean no hover.
type State struct {
	Code     *string   `json:"code"`
	Name     *string   `json:"name"`
	Position *Position `json:"position"`
}

// Hovering reports whether a country is currently shown.
func (s State) Hovering() bool {
	return s.Code != nil
}

// Controller owns the legend state.
type Controller struct {
	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

// New returns an idle controller.
func New() *Controller {
	return &Controller{listeners: make(map[int]func(State))}
}

// OnHoverCountry shows c. It returns false when c is already shown.
func (c *Controller) OnHoverCountry(country Country) bool {
	c.mu.Lock()
	if c.state.Code != nil && *c.state.Code == country.Code {
		c.mu.Unlock()
		return false
	}

	code, name, pos := country.Code, country.Name, country.Position
	c.state = State{Code: &code, Name: &name, Position: &pos}
	snapshot, listeners := c.snapshotLocked()
	c.mu.Unlock()

	notify(listeners, snapshot)
	return true
}

// OnHoverLeaveCountry resets the legend to idle. It returns false when the
// legend was already idle.
func (c *Controller) OnHoverLeaveCountry() bool {
	c.mu.Lock()
	if !c.state.Hovering() {
		c.mu.Unlock()
		return false
	}

	c.state = State{}
	snapshot, listeners := c.snapshotLocked()
	c.mu.Unlock()

	notify(listeners, snapshot)
	return true
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

// Subscribe registers fn to be called after every state change.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) copyLocked() State {
	if c.state.Code == nil {
		return State{}
	}
	code, name, pos := *c.state.Code, *c.state.Name, *c.state.Position
	return State{Code: &code, Name: &name, Position: &pos}
}

func (c *Controller) snapshotLocked() (State, []func(State)) {
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]func(State), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, c.listeners[id])
	}
	return c.copyLocked(), listeners
}

func notify(listeners []func(State), s State) {
	for _, fn := range listeners {
		fn(s)
	}
}
