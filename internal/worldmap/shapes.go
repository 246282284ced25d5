package worldmap

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed assets/countries.json
var defaultShapes []byte

// Shape is the outline of a single country.
type Shape struct {
	Code string `json:"code"`
	Name string `json:"name"`
	D    string `json:"d"`
}

// ParseShapes decodes a JSON list of shapes.
func ParseShapes(raw []byte) ([]Shape, error) {
	var shapes []Shape
	if err := json.Unmarshal(raw, &shapes); err != nil {
		return nil, fmt.Errorf("failed to decode shapes: %w", err)
	}

	seen := make(map[string]bool, len(shapes))
	for i, s := range shapes {
		if s.Code == "" || s.D == "" {
			return nil, fmt.Errorf("shape %d: code and path are required", i)
		}
		if seen[s.Code] {
			return nil, fmt.Errorf("shape %d: duplicate code %q", i, s.Code)
		}
		seen[s.Code] = true
	}
	return shapes, nil
}

// LoadShapes reads shapes from a file.
func LoadShapes(path string) ([]Shape, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shapes: %w", err)
	}
	return ParseShapes(raw)
}

// DefaultShapes returns the built-in country outlines.
func DefaultShapes() []Shape {
	shapes, err := ParseShapes(defaultShapes)
	if err != nil {
		panic("worldmap: embedded shapes are invalid: " + err.Error())
	}
	return shapes
}
