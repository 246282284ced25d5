// Package worldmap renders the country outlines of the map and turns pointer
// movement over them into hover events.
package worldmap

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/beevik/etree"

	"github.com/junkd0g/worldmap/internal/legend"
)

// DefaultViewBox is the viewBox of the built-in shapes.
const DefaultViewBox = "0 0 1008 650"

// SVGID is the id attribute of the rendered svg element.
const SVGID = "map-svg"

// ErrUnknownCountry is returned for pointer events on a code with no shape.
var ErrUnknownCountry = errors.New("unknown country")

// Surface is the svg map. It holds no state besides its listeners.
type Surface struct {
	shapes  []Shape
	byCode  map[string]int
	viewBox string

	mu      sync.Mutex
	onHover []func(legend.Country) bool
	onLeave []func() bool
}

// NewSurface returns a surface over shapes. An empty viewBox selects
// DefaultViewBox.
func NewSurface(shapes []Shape, viewBox string) *Surface {
	if viewBox == "" {
		viewBox = DefaultViewBox
	}
	byCode := make(map[string]int, len(shapes))
	for i, s := range shapes {
		byCode[s.Code] = i
	}
	return &Surface{shapes: shapes, byCode: byCode, viewBox: viewBox}
}

// ViewBox returns the viewBox attribute of the svg.
func (s *Surface) ViewBox() string {
	return s.viewBox
}

// Shapes returns the outlines drawn by the surface.
func (s *Surface) Shapes() []Shape {
	return s.shapes
}

// Name returns the display name of code.
func (s *Surface) Name(code string) (string, bool) {
	i, ok := s.byCode[code]
	if !ok {
		return "", false
	}
	return s.shapes[i].Name, true
}

// Element builds the svg element.
func (s *Surface) Element() *etree.Element {
	svg := etree.NewElement("svg")
	svg.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	svg.CreateAttr("id", SVGID)
	svg.CreateAttr("class", "vue-world-map")
	svg.CreateAttr("viewBox", s.viewBox)

	for _, shape := range s.shapes {
		p := svg.CreateElement("path")
		p.CreateAttr("class", "land")
		p.CreateAttr("id", shape.Code)
		p.CreateAttr("data-name", shape.Name)
		p.CreateAttr("d", shape.D)
		title := p.CreateElement("title")
		title.SetText(shape.Name)
	}
	return svg
}

// RenderSVG writes the svg document to w.
func (s *Surface) RenderSVG(w io.Writer) error {
	doc := etree.NewDocument()
	doc.SetRoot(s.Element())
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	return nil
}

// SVG returns the svg element as a string.
func (s *Surface) SVG() (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(s.Element())
	doc.Indent(2)
	return doc.WriteToString()
}

// OnHover registers fn for hover events. fn reports whether the event changed
// its state.
func (s *Surface) OnHover(fn func(legend.Country) bool) {
	s.mu.Lock()
	s.onHover = append(s.onHover, fn)
	s.mu.Unlock()
}

// OnLeave registers fn for leave events. fn reports whether the event changed
// its state.
func (s *Surface) OnLeave(fn func() bool) {
	s.mu.Lock()
	s.onLeave = append(s.onLeave, fn)
	s.mu.Unlock()
}

// Connect forwards the surface events to a legend controller.
func (s *Surface) Connect(c *legend.Controller) {
	s.OnHover(c.OnHoverCountry)
	s.OnLeave(c.OnHoverLeaveCountry)
}

// PointerEnter raises a hover event for the country under the pointer.
// changed is true when any listener changed state.
func (s *Surface) PointerEnter(code string, pos legend.Position) (changed bool, err error) {
	name, ok := s.Name(code)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCountry, code)
	}

	s.mu.Lock()
	listeners := append([]func(legend.Country) bool(nil), s.onHover...)
	s.mu.Unlock()

	country := legend.Country{Code: code, Name: name, Position: pos}
	for _, fn := range listeners {
		if fn(country) {
			changed = true
		}
	}
	return changed, nil
}

// PointerLeave raises a leave event and reports whether any listener changed
// state.
func (s *Surface) PointerLeave() bool {
	s.mu.Lock()
	listeners := append([]func() bool(nil), s.onLeave...)
	s.mu.Unlock()

	changed := false
	for _, fn := range listeners {
		if fn() {
			changed = true
		}
	}
	return changed
}
