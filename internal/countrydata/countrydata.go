// Package countrydata loads country value series from JSON objects such as
// {"US": 4, "CA": 7}, keeping the key order of the document.
package countrydata

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/junkd0g/worldmap/internal/mapcss"
)

// ErrInvalidJSON is returned when the input is not a JSON object.
var ErrInvalidJSON = errors.New("country data must be a JSON object")

// ValueError reports an entry whose value is not a number.
type ValueError struct {
	Code string
	Raw  string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("country %q has non-numeric value %s", e.Code, e.Raw)
}

// DuplicateError reports a country code present more than once.
type DuplicateError struct {
	Code string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("country %q is listed more than once", e.Code)
}

// Parse reads a JSON object of country code to number.
func Parse(raw []byte) (mapcss.CountryData, error) {
	return ParseString(string(raw))
}

// ParseString is Parse for string input.
func ParseString(raw string) (mapcss.CountryData, error) {
	if !gjson.Valid(raw) {
		return nil, ErrInvalidJSON
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return nil, ErrInvalidJSON
	}

	data := mapcss.CountryData{}
	seen := make(map[string]bool)
	var err error
	doc.ForEach(func(key, value gjson.Result) bool {
		code := key.String()
		if seen[code] {
			err = &DuplicateError{Code: code}
			return false
		}
		seen[code] = true

		if value.Type != gjson.Number {
			err = &ValueError{Code: code, Raw: value.Raw}
			return false
		}
		data = append(data, mapcss.Entry{Code: code, Value: value.Float()})
		return true
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}

// LoadFile reads and parses a country data file.
func LoadFile(path string) (mapcss.CountryData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read country data: %w", err)
	}
	data, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return data, nil
}
