// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"

	"github.com/wneessen/iss-tracker/internal/tiles"
)

const (
	configEnv = "ISSTRACKER"

	// MinPositionInterval and MaxPositionInterval bound the position update interval.
	MinPositionInterval = time.Second * 5
	MaxPositionInterval = time.Minute * 5

	DefaultTextTpl    = "🛰️ {{floatFormat .Latitude 2}}, {{floatFormat .Longitude 2}}"
	DefaultAltTextTpl = "{{.TileSource}}"
	DefaultTooltipTpl = "{{.Title}}{{range .Entries}}\n{{.Caption}}: {{.Value}}{{end}}"
)

// Config represents the application's configuration structure.
type Config struct {
	// Allowed values: metric, imperial
	Units    string     `fig:"units" default:"metric"`
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Window struct {
		Width  int `fig:"width" default:"2048"`
		Height int `fig:"height" default:"1536"`
	} `fig:"window"`

	Position struct {
		// Allowed values: wheretheiss, open-notify
		Provider    string `fig:"provider" default:"wheretheiss"`
		SatelliteID int    `fig:"satellite_id" default:"25544"`
	} `fig:"position"`

	Intervals struct {
		Position time.Duration `fig:"position" default:"10s"`
		Weather  time.Duration `fig:"weather" default:"5m"`
		Output   time.Duration `fig:"output" default:"30s"`
		Geocode  time.Duration `fig:"geocode" default:"1m"`
	} `fig:"intervals"`

	Map struct {
		TileSource string `fig:"tile_source" default:"OpenStreetMap"`
		Zoom       int    `fig:"zoom" default:"5"`
	} `fig:"map"`

	Output struct {
		// Allowed values: terminal, waybar
		Surface string `fig:"surface" default:"terminal"`
	} `fig:"output"`

	Weather struct {
		Disable bool `fig:"disable"`
	} `fig:"weather"`

	Geocode struct {
		Disable bool `fig:"disable"`
	} `fig:"geocode"`

	Templates struct {
		Text    string `fig:"text"`
		AltText string `fig:"alt_text"`
		Tooltip string `fig:"tooltip"`
	} `fig:"templates"`

	Metrics struct {
		Address string `fig:"address"`
	} `fig:"metrics"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Units != "metric" && c.Units != "imperial" {
		return fmt.Errorf("invalid units: %s", c.Units)
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	switch strings.ToLower(c.Position.Provider) {
	case "wheretheiss", "open-notify":
	default:
		return fmt.Errorf("invalid position provider: %s", c.Position.Provider)
	}
	if c.Position.SatelliteID <= 0 {
		return fmt.Errorf("invalid satellite id: %d", c.Position.SatelliteID)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size: %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Intervals.Position < MinPositionInterval || c.Intervals.Position > MaxPositionInterval {
		return fmt.Errorf("invalid position update interval: %s (allowed: %s to %s)", c.Intervals.Position,
			MinPositionInterval, MaxPositionInterval)
	}
	if c.Intervals.Weather <= 0 {
		return fmt.Errorf("invalid weather update interval: %s", c.Intervals.Weather)
	}
	if c.Intervals.Output <= 0 {
		return fmt.Errorf("invalid output interval: %s", c.Intervals.Output)
	}
	if c.Intervals.Geocode < time.Second {
		return fmt.Errorf("invalid geocode interval: %s", c.Intervals.Geocode)
	}
	src, err := tiles.Lookup(c.Map.TileSource)
	if err != nil {
		return fmt.Errorf("invalid map tile source: %w", err)
	}
	c.Map.TileSource = src.Name
	if c.Map.Zoom < 0 || c.Map.Zoom > src.MaxZoom {
		return fmt.Errorf("invalid map zoom level: %d", c.Map.Zoom)
	}
	switch strings.ToLower(c.Output.Surface) {
	case "terminal", "waybar":
	default:
		return fmt.Errorf("invalid output surface: %s", c.Output.Surface)
	}
	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.AltText == "" {
		c.Templates.AltText = DefaultAltTextTpl
	}
	if c.Templates.Tooltip == "" {
		c.Templates.Tooltip = DefaultTooltipTpl
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
