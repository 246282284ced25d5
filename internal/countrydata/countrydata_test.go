package countrydata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkd0g/worldmap/internal/mapcss"
)

func TestParseKeepsDocumentOrder(t *testing.T) {
	data, err := ParseString(`{"US": 4, "CA": 7, "GB": 8, "IE": 14, "unknown": 1337}`)
	require.NoError(t, err)

	assert.Equal(t, mapcss.CountryData{
		{Code: "US", Value: 4},
		{Code: "CA", Value: 7},
		{Code: "GB", Value: 8},
		{Code: "IE", Value: 14},
		{Code: "unknown", Value: 1337},
	}, data)
}

func TestParseEmptyObject(t *testing.T) {
	data, err := ParseString(`{}`)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestParseRejectsNonNumeric(t *testing.T) {
	_, err := ParseString(`{"US": 4, "CA": "seven"}`)
	require.Error(t, err)

	var verr *ValueError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "CA", verr.Code)
	assert.Equal(t, `"seven"`, verr.Raw)

	_, err = ParseString(`{"US": null}`)
	require.ErrorAs(t, err, &verr)
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := ParseString(`{"US": 4, "US": 5}`)

	var derr *DuplicateError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "US", derr.Code)
}

func TestParseRejectsNonObject(t *testing.T) {
	for _, raw := range []string{`[1, 2]`, `42`, `{"US": `, ``} {
		_, err := ParseString(raw)
		assert.ErrorIs(t, err, ErrInvalidJSON, raw)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"FR": 1.5, "DE": 2}`), 0o644))

	data, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, mapcss.CountryData{{Code: "FR", Value: 1.5}, {Code: "DE", Value: 2}}, data)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
