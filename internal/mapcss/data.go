package mapcss

import "sort"

// UnknownKey is the pseudo country code used for values that could not be
// attributed to a country. It never takes part in the color domain and
// produces no rule.
const UnknownKey = "unknown"

// Entry is a single country value.
type Entry struct {
	Code  string
	Value float64
}

// CountryData is an ordered set of country values. Codes are unique.
type CountryData []Entry

// FromMap builds CountryData from a map, ordering codes lexically.
func FromMap(m map[string]float64) CountryData {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	data := make(CountryData, 0, len(codes))
	for _, code := range codes {
		data = append(data, Entry{Code: code, Value: m[code]})
	}
	return data
}

// Set replaces the value for code keeping its position, or appends it.
func (d CountryData) Set(code string, value float64) CountryData {
	for i := range d {
		if d[i].Code == code {
			d[i].Value = value
			return d
		}
	}
	return append(d, Entry{Code: code, Value: value})
}

// Get returns the value stored for code.
func (d CountryData) Get(code string) (float64, bool) {
	for _, e := range d {
		if e.Code == code {
			return e.Value, true
		}
	}
	return 0, false
}

// Clone returns a copy that does not share storage with d.
func (d CountryData) Clone() CountryData {
	if d == nil {
		return nil
	}
	out := make(CountryData, len(d))
	copy(out, d)
	return out
}

// Equal reports whether both sequences hold the same entries in the same order.
func (d CountryData) Equal(other CountryData) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i] != other[i] {
			return false
		}
	}
	return true
}
