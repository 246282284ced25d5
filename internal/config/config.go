// Package config loads the worldmap configuration.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"github.com/junkd0g/worldmap/internal/mapcss"
)

//go:embed default.yaml
var defaultConfig []byte

type (
	MapConfig struct {
		ViewBox    string `yaml:"view_box"`
		ShapesPath string `yaml:"shapes_path"`
	}

	PageConfig struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Theme       string `yaml:"theme"`
	}

	WatchConfig struct {
		Debounce time.Duration `yaml:"debounce"`
	}

	LoggingConfig struct {
		Level string `yaml:"level"`
	}

	Config struct {
		Colors  mapcss.ColorConfig `yaml:"colors"`
		Map     MapConfig          `yaml:"map"`
		Page    PageConfig         `yaml:"page"`
		Watch   WatchConfig        `yaml:"watch"`
		Logging LoggingConfig      `yaml:"logging"`
	}
)

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := parse(nil)
	if err != nil {
		panic("config: embedded defaults are invalid: " + err.Error())
	}
	return cfg
}

// Load reads path on top of the built-in defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(nil)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	cfg, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

func parse(overlay []byte) (*Config, error) {
	cfg := &Config{}
	if err := decode(defaultConfig, cfg); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(overlay)) > 0 {
		if err := decode(overlay, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	return nil
}

// Validate checks the values a map cannot be rendered without.
func (c *Config) Validate() error {
	var err error

	if _, e := colorful.Hex(c.Colors.LowColor); e != nil {
		err = multierr.Append(err, fmt.Errorf("colors.low_color: %w", e))
	}
	if _, e := colorful.Hex(c.Colors.HighColor); e != nil {
		err = multierr.Append(err, fmt.Errorf("colors.high_color: %w", e))
	}
	if c.Colors.DefaultCountryFillColor == "" {
		err = multierr.Append(err, errors.New("colors.default_country_fill_color is required"))
	}
	if c.Colors.CountryStrokeColor == "" {
		err = multierr.Append(err, errors.New("colors.country_stroke_color is required"))
	}
	if e := ValidateViewBox(c.Map.ViewBox); e != nil {
		err = multierr.Append(err, fmt.Errorf("map.view_box: %w", e))
	}
	switch c.Page.Theme {
	case "light", "dark":
	default:
		err = multierr.Append(err, fmt.Errorf("page.theme: unknown theme %q", c.Page.Theme))
	}
	switch c.Logging.Level {
	case "none", "normal", "debug":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	if c.Watch.Debounce < 0 {
		err = multierr.Append(err, errors.New("watch.debounce must not be negative"))
	}
	return err
}

// ValidateViewBox checks that v holds four numbers with a positive size.
func ValidateViewBox(v string) error {
	fields := strings.Fields(strings.ReplaceAll(v, ",", " "))
	if len(fields) != 4 {
		return fmt.Errorf("expected 4 numbers, got %q", v)
	}
	nums := make([]float64, 4)
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", f)
		}
		nums[i] = n
	}
	if nums[2] <= 0 || nums[3] <= 0 {
		return fmt.Errorf("width and height must be positive in %q", v)
	}
	return nil
}
