// Package config loads service configuration from HCL.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the top-level service configuration.
type Config struct {
	Listen       string `hcl:"listen,optional" json:"listen"`
	StatePath    string `hcl:"state_path,optional" json:"state_path"`
	Language     string `hcl:"language,optional" json:"language,omitempty"`
	LogLevel     string `hcl:"log_level,optional" json:"log_level,omitempty"`
	LogJSON      bool   `hcl:"log_json,optional" json:"log_json,omitempty"`
	TickInterval string `hcl:"tick_interval,optional" json:"tick_interval,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:       ":8080",
		StatePath:    "sincelast.db",
		Language:     "",
		LogLevel:     "info",
		TickInterval: "1s",
	}
}

// LoadFile loads an HCL config file, filling unset fields with defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes HCL config bytes. filename is used in diagnostics only.
func Parse(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config: %s", diags.Error())
	}

	cfg := Default()
	if diags := gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config: %s", diags.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.StatePath == "" {
		return fmt.Errorf("state_path must not be empty")
	}
	if _, err := c.Tick(); err != nil {
		return err
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Tick returns the parsed tick interval.
func (c *Config) Tick() (time.Duration, error) {
	if c.TickInterval == "" {
		return time.Second, nil
	}
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid tick_interval %q: %w", c.TickInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("tick_interval must be positive, got %q", c.TickInterval)
	}
	return d, nil
}
