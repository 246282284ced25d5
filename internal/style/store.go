package style

import (
	"slices"
	"sync"

	"github.com/junkd0g/worldmap/internal/mapcss"
)

// Props are the inputs the map stylesheet is computed from.
type Props struct {
	CountryData mapcss.CountryData
	Colors      mapcss.ColorConfig
}

// Store holds the current Props and notifies subscribers on every change.
// Subscribers run synchronously, in registration order, on the goroutine that
// made the change.
type Store struct {
	mu        sync.Mutex
	props     Props
	listeners map[int]func(Props)
	nextID    int
}

// NewStore returns a store seeded with props.
func NewStore(props Props) *Store {
	return &Store{
		props:     clone(props),
		listeners: make(map[int]func(Props)),
	}
}

// Props returns a copy of the current props.
func (s *Store) Props() Props {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.props)
}

// Set replaces all props.
func (s *Store) Set(props Props) {
	s.update(func(p *Props) { *p = clone(props) })
}

// SetCountryData replaces the data series.
func (s *Store) SetCountryData(data mapcss.CountryData) {
	s.update(func(p *Props) { p.CountryData = data.Clone() })
}

// SetColors replaces the color configuration.
func (s *Store) SetColors(colors mapcss.ColorConfig) {
	s.update(func(p *Props) { p.Colors = colors })
}

// Subscribe registers fn and returns a function removing it.
func (s *Store) Subscribe(fn func(Props)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) update(mutate func(*Props)) {
	s.mu.Lock()
	mutate(&s.props)
	props := clone(s.props)

	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]func(Props), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(props)
	}
}

func clone(p Props) Props {
	return Props{CountryData: p.CountryData.Clone(), Colors: p.Colors}
}
