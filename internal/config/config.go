// Package config handles loading and resolving chartline configuration.
// Resolution order (later layers win):
//  1. chartline.json in the current working directory
//  2. Environment variables CHARTLINE_FORMAT, CHARTLINE_DB_PATH, CHARTLINE_LOG_LEVEL
//  3. CLI flags
//
// Per-chart style overrides live under "charts" in the file and are
// applied on top of chart.DefaultStyle.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/derickschaefer/chartline/internal/chart"
	"github.com/derickschaefer/chartline/internal/model"
	"github.com/derickschaefer/chartline/internal/scene"
	"github.com/derickschaefer/chartline/internal/util"
)

const (
	DefaultConfigFile = "chartline.json"
	DefaultFormat     = "svg"
	DefaultLogLevel   = "warn"
	DefaultWidth      = 960
	DefaultHeight     = 500
	EnvFormat         = "CHARTLINE_FORMAT"
	EnvDBPath         = "CHARTLINE_DB_PATH"
	EnvLogLevel       = "CHARTLINE_LOG_LEVEL"
)

// Formats lists every output format a command may be asked for. Each command
// narrows this to the formats it can write.
var Formats = []string{"svg", "png", "json", "jsonl", "table", "ascii", "csv", "tsv", "md"}

// ChartOverrides are optional style settings for one chart kind. Nil or
// empty fields keep the chart's default.
type ChartOverrides struct {
	MarginTop    *float64 `json:"margin_top,omitempty"`
	MarginRight  *float64 `json:"margin_right,omitempty"`
	MarginBottom *float64 `json:"margin_bottom,omitempty"`
	MarginLeft   *float64 `json:"margin_left,omitempty"`
	Nice         *bool    `json:"nice,omitempty"`
	PaletteUp    string   `json:"palette_up,omitempty"`
	PaletteDown  string   `json:"palette_down,omitempty"`
	Color        string   `json:"color,omitempty"`
	Symbol       string   `json:"symbol,omitempty"`
	XScale       string   `json:"x_scale,omitempty"`
	BandPadding  *float64 `json:"band_padding,omitempty"`
	Fills        []string `json:"fills,omitempty"`
}

// File is the on-disk representation of chartline.json.
type File struct {
	DefaultFormat string                    `json:"default_format,omitempty"`
	DBPath        string                    `json:"db_path,omitempty"`
	LogLevel      string                    `json:"log_level,omitempty"`
	Width         float64                   `json:"width,omitempty"`
	Height        float64                   `json:"height,omitempty"`
	Charts        map[string]ChartOverrides `json:"charts,omitempty"`
}

// Flags carries the CLI flag values that take part in resolution. Empty
// strings and zero sizes mean "not set".
type Flags struct {
	Format   string
	DBPath   string
	LogLevel string
	Width    float64
	Height   float64
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	Format     string
	DBPath     string
	LogLevel   string
	Width      float64
	Height     float64
	Charts     map[string]ChartOverrides
	ConfigPath string // path of the chartline.json that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	Quiet   bool
	Verbose bool
	JSONLog bool
}

// Load resolves configuration from all sources. A malformed config file is
// an error; a missing one is not.
func Load(flags Flags) (*Config, error) {
	cfg := &Config{
		Format:   DefaultFormat,
		LogLevel: DefaultLogLevel,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
	}

	// Layer 1: chartline.json (lowest priority)
	f, path, err := loadFile()
	if err != nil {
		return nil, err
	}
	if f != nil {
		applyFile(cfg, f, path)
	}

	// Layer 2: environment
	if v := os.Getenv(EnvFormat); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	// Layer 3: CLI flags (highest priority)
	if flags.Format != "" {
		cfg.Format = flags.Format
	}
	if flags.DBPath != "" {
		cfg.DBPath = flags.DBPath
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	if flags.Width > 0 {
		cfg.Width = flags.Width
	}
	if flags.Height > 0 {
		cfg.Height = flags.Height
	}

	if cfg.DBPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DBPath = filepath.Join(home, ".chartline", "chartline.db")
		}
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs util.MultiError
	if !validFormat(c.Format) {
		errs.Addf("format: %q is not one of %s", c.Format, strings.Join(Formats, "|"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs.Addf("log_level: %v", err)
	}
	if c.Width < 0 || c.Height < 0 {
		errs.Addf("size: negative viewport %gx%g", c.Width, c.Height)
	}
	for _, name := range sortedKeys(c.Charts) {
		kind, err := scene.ParseKind(name)
		if err != nil {
			errs.Addf("charts.%s: %v", name, err)
			continue
		}
		if err := c.Style(kind).Validate(); err != nil {
			errs.Addf("charts.%s: %v", name, err)
		}
	}
	return errs.Err()
}

// Viewport returns the configured render size.
func (c *Config) Viewport() model.Viewport {
	return model.Viewport{Width: c.Width, Height: c.Height}
}

// Level returns the parsed log level, falling back to warn.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.WarnLevel
	}
	return lvl
}

// Style returns the default style of kind with the file's overrides applied.
func (c *Config) Style(kind scene.Kind) chart.Style {
	st := chart.DefaultStyle(kind)
	if ov, ok := c.Charts[string(kind)]; ok {
		ov.Apply(&st)
	}
	return st
}

// Apply copies every set override into st.
func (ov ChartOverrides) Apply(st *chart.Style) {
	setF := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setS := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setF(&st.Margins.Top, ov.MarginTop)
	setF(&st.Margins.Right, ov.MarginRight)
	setF(&st.Margins.Bottom, ov.MarginBottom)
	setF(&st.Margins.Left, ov.MarginLeft)
	setF(&st.BandPadding, ov.BandPadding)
	if ov.Nice != nil {
		st.Nice = *ov.Nice
	}
	setS(&st.ColorUp, ov.PaletteUp)
	setS(&st.ColorDown, ov.PaletteDown)
	setS(&st.Color, ov.Color)
	if ov.Symbol != "" {
		st.Symbol = model.SymbolKind(ov.Symbol)
	}
	if ov.XScale != "" {
		st.XScale = chart.XScale(ov.XScale)
	}
	if len(ov.Fills) > 0 {
		st.Fills = append([]string(nil), ov.Fills...)
	}
}

// ─── File I/O ─────────────────────────────────────────────────────────────────

// loadFile reads chartline.json from the current working directory.
// A missing file yields (nil, "", nil).
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	f, err := ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return f, path, nil
}

// ReadFile parses the config file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return &f, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) {
	cfg.ConfigPath = path
	if f.DefaultFormat != "" {
		cfg.Format = f.DefaultFormat
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.Width > 0 {
		cfg.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Height = f.Height
	}
	cfg.Charts = f.Charts
}

// Template returns a File populated with sensible defaults, suitable for
// writing an initial chartline.json via `chartline config init`.
func Template() File {
	return File{
		DefaultFormat: DefaultFormat,
		LogLevel:      DefaultLogLevel,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
	}
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

// ─── Keys ─────────────────────────────────────────────────────────────────────

// Keys lists the top-level keys accepted by Set. Chart overrides use
// "<chart>.<option>", e.g. "area.margin_top".
var Keys = []string{"default_format", "db_path", "log_level", "width", "height"}

// ChartKeys lists the per-chart override options.
var ChartKeys = []string{
	"margin_top", "margin_right", "margin_bottom", "margin_left",
	"nice", "palette_up", "palette_down", "color", "symbol",
	"x_scale", "band_padding", "fills",
}

// Set assigns one key from its string form. Fills take a comma-separated
// colour list.
func (f *File) Set(key, val string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if chartName, opt, ok := strings.Cut(key, "."); ok {
		if _, err := scene.ParseKind(chartName); err != nil {
			return err
		}
		if f.Charts == nil {
			f.Charts = make(map[string]ChartOverrides)
		}
		ov := f.Charts[chartName]
		if err := ov.set(opt, val); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		f.Charts[chartName] = ov
		return nil
	}

	switch key {
	case "default_format", "format":
		if !validFormat(val) {
			return fmt.Errorf("format must be one of %s", strings.Join(Formats, "|"))
		}
		f.DefaultFormat = val
	case "db_path":
		f.DBPath = val
	case "log_level":
		if _, err := zerolog.ParseLevel(val); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
		f.LogLevel = val
	case "width", "height":
		n, err := strconv.ParseFloat(val, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative number", key)
		}
		if key == "width" {
			f.Width = n
		} else {
			f.Height = n
		}
	default:
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s, or <chart>.<%s>",
			key, strings.Join(Keys, ", "), strings.Join(ChartKeys, "|"))
	}
	return nil
}

func (ov *ChartOverrides) set(opt, val string) error {
	num := func(dst **float64) error {
		n, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		*dst = &n
		return nil
	}
	switch opt {
	case "margin_top":
		return num(&ov.MarginTop)
	case "margin_right":
		return num(&ov.MarginRight)
	case "margin_bottom":
		return num(&ov.MarginBottom)
	case "margin_left":
		return num(&ov.MarginLeft)
	case "band_padding":
		return num(&ov.BandPadding)
	case "nice":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("must be true or false")
		}
		ov.Nice = &b
	case "palette_up":
		ov.PaletteUp = val
	case "palette_down":
		ov.PaletteDown = val
	case "color":
		ov.Color = val
	case "symbol":
		ov.Symbol = val
	case "x_scale":
		ov.XScale = val
	case "fills":
		ov.Fills = nil
		for _, c := range strings.Split(val, ",") {
			if c = strings.TrimSpace(c); c != "" {
				ov.Fills = append(ov.Fills, c)
			}
		}
	default:
		return fmt.Errorf("unknown chart option %q (valid: %s)", opt, strings.Join(ChartKeys, ", "))
	}
	return nil
}

func validFormat(s string) bool {
	for _, f := range Formats {
		if s == f {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]ChartOverrides) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
