// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers a YAML file and environment variables on top of New.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"regexp"
	"strings"
)

var metricNamespace = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataPath points at the launch records CSV loaded at startup.
	DataPath string `koanf:"data_path"`

	// SliderMin and SliderMax override the payload slider bounds. When unset
	// the bounds follow the dataset's payload range.
	SliderMin *float64 `koanf:"slider_min"`
	SliderMax *float64 `koanf:"slider_max"`

	// SliderStep is the payload slider granularity in kilograms.
	SliderStep float64 `koanf:"slider_step"`

	// ChartWidth and ChartHeight size the rendered SVG charts in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`

	// RenderCacheSize bounds the rendered chart cache. Negative disables
	// caching; 0 is rejected since the cache keys come from request input.
	RenderCacheSize int `koanf:"render_cache_size"`

	// Title is shown as the dashboard heading.
	Title string `koanf:"title"`

	// MetricsEnabled turns the Prometheus recorders on or off. The metrics
	// are exported on /healthz either way.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsRefreshSeconds sets how often runtime gauges are sampled.
	MetricsRefreshSeconds int `koanf:"metrics_refresh_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		DataPath:        "data/spacex_launch_dash.csv",
		SliderStep:      1000,
		ChartWidth:      720,
		ChartHeight:     420,
		RenderCacheSize: 256,
		Title:           "SpaceX Launch Records Dashboard",

		MetricsEnabled:        true,
		MetricsNamespace:      "launchdash",
		MetricsRefreshSeconds: 10,
	}
}

// Validate reports the first invalid setting, wrapped with ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataPath == "":
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	case c.SliderStep <= 0:
		return fmt.Errorf("%w: slider_step must be positive, got %v", ErrInvalidConfig, c.SliderStep)
	case c.ChartWidth <= 0 || c.ChartHeight <= 0:
		return fmt.Errorf("%w: chart size must be positive, got %dx%d", ErrInvalidConfig, c.ChartWidth, c.ChartHeight)
	case c.RenderCacheSize == 0:
		return fmt.Errorf("%w: render_cache_size must not be zero, use a negative value to disable caching", ErrInvalidConfig)
	case !metricNamespace.MatchString(c.MetricsNamespace):
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name prefix", ErrInvalidConfig, c.MetricsNamespace)
	case c.MetricsRefreshSeconds <= 0:
		return fmt.Errorf("%w: metrics_refresh_seconds must be positive, got %d", ErrInvalidConfig, c.MetricsRefreshSeconds)
	case c.SliderMin != nil && *c.SliderMin < 0:
		return fmt.Errorf("%w: slider_min must not be negative, got %v", ErrInvalidConfig, *c.SliderMin)
	case c.SliderMin != nil && c.SliderMax != nil && *c.SliderMin > *c.SliderMax:
		return fmt.Errorf("%w: slider_min %v is greater than slider_max %v", ErrInvalidConfig, *c.SliderMin, *c.SliderMax)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
