// Package mapcss turns per-country values into the stylesheet of the world map.
//
// Values are rescaled to [0,1] over the whole data set, passed through a color
// scale and emitted as one fill rule per country. The generated rules are
// placed in front of the static base rules so that the base `.land` fill only
// applies to countries without data.
package mapcss

import (
	"fmt"
	"math"
	"strings"
)

// Selector is the root class every generated rule is scoped to.
const Selector = ".vue-world-map"

// ColorConfig holds the colors of the map. Values are passed through as-is.
type ColorConfig struct {
	LowColor                string `yaml:"low_color" json:"lowColor"`
	HighColor               string `yaml:"high_color" json:"highColor"`
	DefaultCountryFillColor string `yaml:"default_country_fill_color" json:"defaultCountryFillColor"`
	CountryStrokeColor      string `yaml:"country_stroke_color" json:"countryStrokeColor"`
}

// DefaultColorConfig returns the stock map palette.
func DefaultColorConfig() ColorConfig {
	return ColorConfig{
		LowColor:                "#fde2e2",
		HighColor:               "#d83737",
		DefaultCountryFillColor: "#dadada",
		CountryStrokeColor:      "#909090",
	}
}

// Base returns the part of the config used by BaseCSS.
func (c ColorConfig) Base() BaseConfig {
	return BaseConfig{
		DefaultCountryFillColor: c.DefaultCountryFillColor,
		CountryStrokeColor:      c.CountryStrokeColor,
	}
}

func participates(e Entry) bool {
	return e.Code != UnknownKey && !math.IsNaN(e.Value) && !math.IsInf(e.Value, 0)
}

// DynamicCSS returns one fill rule per country, in data order.
//
// The normalized value is (v-min)/(max-min) over all participating entries and
// 0 when every value is equal. It is computed as 1-(max-v)/(max-min), which is
// exactly 0 at the minimum and exactly 1 at the maximum. No rounding is
// applied, a scale printing t verbatim sees values such as 0.30000000000000004.
func DynamicCSS(data CountryData, scale Scale) []string {
	lo, hi, ok := Domain(data)
	if !ok {
		return nil
	}

	rules := make([]string, 0, len(data))
	for _, e := range data {
		if !participates(e) {
			continue
		}
		rules = append(rules, Rule(e.Code, scale(normalize(e.Value, lo, hi)).Hex()))
	}
	return rules
}

func normalize(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return 1 - (hi-v)/(hi-lo)
}

// Domain returns the smallest and largest value taking part in the color
// domain. ok is false when there is none.
func Domain(data CountryData) (lo, hi float64, ok bool) {
	for _, e := range data {
		if !participates(e) {
			continue
		}
		if !ok {
			lo, hi, ok = e.Value, e.Value, true
			continue
		}
		lo = math.Min(lo, e.Value)
		hi = math.Max(hi, e.Value)
	}
	return lo, hi, ok
}

// Rule formats a single country fill rule.
func Rule(code, fill string) string {
	return fmt.Sprintf("%s #%s { fill: %s; }", Selector, code, fill)
}

// BaseConfig carries the colors of countries without data.
type BaseConfig struct {
	DefaultCountryFillColor string
	CountryStrokeColor      string
}

// BaseCSS returns the static rules of the map.
func BaseCSS(cfg BaseConfig) string {
	return fmt.Sprintf(`%[1]s .land { fill:%[2]s; stroke:%[3]s; stroke-width:0.5; stroke-linejoin:round; transition:opacity 0.1s; }
%[1]s .land:hover { opacity:0.8; cursor:pointer; }
%[1]s { width:100%%; height:auto; display:block; }
.vue-map-legend { position:absolute; pointer-events:none; background:#fff; border:1px solid %[3]s; border-radius:4px; padding:4px 8px; font:12px sans-serif; }
.vue-map-legend[hidden] { display:none; }`,
		Selector, cfg.DefaultCountryFillColor, cfg.CountryStrokeColor)
}

// CombinedCSS joins the dynamic rules with single spaces and appends base.
func CombinedCSS(base string, dynamic []string) string {
	return strings.Join(dynamic, " ") + " " + base
}

// Stylesheet runs the whole pipeline for the given data and colors.
func Stylesheet(data CountryData, cfg ColorConfig) (string, error) {
	scale, err := NewLinearScale(cfg.LowColor, cfg.HighColor)
	if err != nil {
		return "", err
	}
	return CombinedCSS(BaseCSS(cfg.Base()), DynamicCSS(data, scale)), nil
}
