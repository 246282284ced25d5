package mapcss

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorHandle is the result of applying a Scale to a normalized value.
type ColorHandle interface {
	Hex() string
}

// Scale maps a normalized value t in [0,1] to a color.
type Scale func(t float64) ColorHandle

type colorHandle struct {
	c colorful.Color
}

func (h colorHandle) Hex() string {
	return h.c.Clamped().Hex()
}

// NewLinearScale returns a scale blending low into high in RGB space.
// Values of t outside [0,1] are clamped.
func NewLinearScale(low, high string) (Scale, error) {
	lo, err := colorful.Hex(low)
	if err != nil {
		return nil, fmt.Errorf("failed to parse low color %q: %w", low, err)
	}
	hi, err := colorful.Hex(high)
	if err != nil {
		return nil, fmt.Errorf("failed to parse high color %q: %w", high, err)
	}

	return func(t float64) ColorHandle {
		switch {
		case t < 0:
			t = 0
		case t > 1:
			t = 1
		}
		return colorHandle{c: lo.BlendRgb(hi, t)}
	}, nil
}

// MustLinearScale is like NewLinearScale but panics on malformed colors.
func MustLinearScale(low, high string) Scale {
	s, err := NewLinearScale(low, high)
	if err != nil {
		panic("MustLinearScale: " + err.Error())
	}
	return s
}
