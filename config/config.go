// Package config provides configuration parsing for pulse-view and
// pulse-agent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/pulse-view/dashboard"
	"gitlab.com/tinyland/lab/pulse-view/display/gauge"
	"gitlab.com/tinyland/lab/pulse-view/metrics"
	"gitlab.com/tinyland/lab/pulse-view/retry"
)

// Environment variables applied over the file configuration.
const (
	EnvURL      = "PULSE_URL"
	EnvLogLevel = "PULSE_LOG_LEVEL"
	EnvLogFile  = "PULSE_LOG_FILE"
	EnvPort     = "PORT"
)

// Config represents the pulse-view and pulse-agent configuration.
type Config struct {
	// Server holds the stream endpoint pulse-view connects to.
	Server ServerConfig `yaml:"server"`

	// Agent holds pulse-agent listener and sampling settings.
	Agent AgentConfig `yaml:"agent"`

	// Dashboard holds buffering and chart settings.
	Dashboard DashboardConfig `yaml:"dashboard"`

	// Display holds terminal rendering settings.
	Display DisplayConfig `yaml:"display"`

	// Log holds log output settings.
	Log LogConfig `yaml:"log"`
}

// ServerConfig holds the upstream connection settings.
type ServerConfig struct {
	// URL is the websocket endpoint, e.g. "ws://raspberrypi:8080/ws".
	URL string `yaml:"url"`
	// ReconnectDelay is a duration string between reconnect attempts.
	ReconnectDelay string `yaml:"reconnect_delay"`
	// MaxReconnectDelay caps the delay when BackoffMultiplier is above 1.
	MaxReconnectDelay string `yaml:"max_reconnect_delay"`
	// BackoffMultiplier grows the delay per failed attempt. 1 keeps it fixed.
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	// PongWait is how long a silent connection is kept open.
	PongWait string `yaml:"pong_wait"`
}

// AgentConfig holds pulse-agent settings.
type AgentConfig struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// Interval is the sampling period as a duration string.
	Interval string `yaml:"interval"`
	// DiskPath is the filesystem whose usage is reported.
	DiskPath string `yaml:"disk_path"`
}

// DashboardConfig holds window and chart settings.
type DashboardConfig struct {
	// Capacity is the number of samples kept per chart.
	Capacity int `yaml:"capacity"`
	// RateUnitBytes divides network byte deltas. 1048576 reports MiB.
	RateUnitBytes float64 `yaml:"rate_unit_bytes"`
	// StaleAfter resets the rate estimator across longer gaps. "0s" disables it.
	StaleAfter string `yaml:"stale_after"`
	// Thresholds color the circular gauges.
	Thresholds gauge.Thresholds `yaml:"thresholds"`
	// Colors are the chart series colors.
	Colors dashboard.Colors `yaml:"colors"`
}

// DisplayConfig holds terminal rendering settings.
type DisplayConfig struct {
	// Theme selects the TUI palette.
	Theme string `yaml:"theme"`
	// Color is "auto", "always", or "never".
	Color string `yaml:"color"`
	// Oversample renders charts at this multiple and downsamples.
	Oversample int `yaml:"oversample"`
	// ExportWidth and ExportHeight size PNGs written by -export.
	ExportWidth  int `yaml:"export_width"`
	ExportHeight int `yaml:"export_height"`
}

// LogConfig holds log settings.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level"`
	// File receives TUI-mode logs; headless modes log to stderr.
	File string `yaml:"file"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Server: ServerConfig{
			URL:               "ws://localhost:8080/ws",
			ReconnectDelay:    "3s",
			MaxReconnectDelay: "3s",
			BackoffMultiplier: 1,
			PongWait:          "60s",
		},
		Agent: AgentConfig{
			Listen:   ":8080",
			Interval: "1s",
			DiskPath: "/",
		},
		Dashboard: DashboardConfig{
			Capacity:      metrics.DefaultWindowCapacity,
			RateUnitBytes: metrics.MiB,
			StaleAfter:    "10s",
			Thresholds:    gauge.DefaultThresholds(),
			Colors:        dashboard.DefaultColors(),
		},
		Display: DisplayConfig{
			Theme:        "default",
			Color:        "auto",
			Oversample:   2,
			ExportWidth:  600,
			ExportHeight: 200,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(home, ".local", "state", "pulse-view", "pulse-view.log"),
		},
	}
}

// LoadConfig loads configuration from a YAML file, merging with defaults.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return config, nil
}

// LoadEnv reads .env files (missing files are ignored) into the process
// environment without overriding variables that are already set, then
// applies the environment to c.
func (c *Config) LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	c.ApplyEnv(os.LookupEnv)
	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvURL); ok && v != "" {
		c.Server.URL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogFile); ok && v != "" {
		c.Log.File = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		c.Agent.Listen = v
	}
}

// Validate checks the configuration for required fields and logical consistency.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if !strings.HasPrefix(c.Server.URL, "ws://") && !strings.HasPrefix(c.Server.URL, "wss://") {
		return fmt.Errorf("server.url must start with ws:// or wss://, got %q", c.Server.URL)
	}
	for field, raw := range map[string]string{
		"server.reconnect_delay":     c.Server.ReconnectDelay,
		"server.max_reconnect_delay": c.Server.MaxReconnectDelay,
		"server.pong_wait":           c.Server.PongWait,
		"agent.interval":             c.Agent.Interval,
		"dashboard.stale_after":      c.Dashboard.StaleAfter,
	} {
		if _, err := parseDuration(raw); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	if err := c.RetryPolicy().Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	if c.Dashboard.Capacity < 2 {
		return fmt.Errorf("dashboard.capacity must be at least 2, got %d", c.Dashboard.Capacity)
	}
	if c.Dashboard.RateUnitBytes <= 0 {
		return fmt.Errorf("dashboard.rate_unit_bytes must be positive, got %v", c.Dashboard.RateUnitBytes)
	}
	t := c.Dashboard.Thresholds
	if t.Warn < 0 || t.Critical > 100 || t.Warn > t.Critical {
		return fmt.Errorf("dashboard.thresholds must satisfy 0 <= warn <= critical <= 100, got warn=%v critical=%v", t.Warn, t.Critical)
	}

	switch c.Display.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("display.color must be 'auto', 'always', or 'never', got %q", c.Display.Color)
	}
	if c.Display.Oversample < 1 || c.Display.Oversample > 4 {
		return fmt.Errorf("display.oversample must be between 1 and 4, got %d", c.Display.Oversample)
	}
	if c.Display.ExportWidth <= 0 || c.Display.ExportHeight <= 0 {
		return fmt.Errorf("display.export_width and export_height must be positive")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	return nil
}

// RetryPolicy returns the reconnect policy.
func (c *Config) RetryPolicy() retry.Policy {
	delay, _ := parseDuration(c.Server.ReconnectDelay)
	maxDelay, _ := parseDuration(c.Server.MaxReconnectDelay)
	return retry.Policy{Delay: delay, MaxDelay: maxDelay, Multiplier: c.Server.BackoffMultiplier}
}

// PongWait returns the read timeout of a silent connection.
func (c *Config) PongWait() time.Duration {
	d, _ := parseDuration(c.Server.PongWait)
	return d
}

// SampleInterval returns the agent sampling period.
func (c *Config) SampleInterval() time.Duration {
	d, _ := parseDuration(c.Agent.Interval)
	return d
}

// DashboardConfig builds the controller settings. The logger is left unset.
func (c *Config) DashboardConfig() dashboard.Config {
	stale, _ := parseDuration(c.Dashboard.StaleAfter)
	return dashboard.Config{
		Capacity:   c.Dashboard.Capacity,
		RateUnit:   c.Dashboard.RateUnitBytes,
		StaleAfter: stale,
		Thresholds: c.Dashboard.Thresholds,
		Colors:     c.Dashboard.Colors,
	}
}

// parseDuration accepts an empty string as zero.
func parseDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative, got %s", raw)
	}
	return d, nil
}

// SaveConfig saves configuration to a YAML file.
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns ~/.config/pulse-view/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pulse-view", "config.yaml")
}
