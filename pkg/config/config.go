// Package config loads the flowchart tool's YAML settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ravi-parthasarathy/flowchart/pkg/flowchart"
)

// Config holds every setting the CLI reads from its config file.
type Config struct {
	// Sources is the vocabulary of external-data tokens a hierarchy may use.
	Sources []string `yaml:"sources"`

	// OutputDir receives rendered .gv files and images.
	OutputDir string `yaml:"output_dir"`

	Layout LayoutConfig `yaml:"layout"`
	Log    LogConfig    `yaml:"log"`
}

// LayoutConfig selects the external Graphviz invocation.
type LayoutConfig struct {
	Binary string `yaml:"binary"`
	// Format is passed as -T<format>; empty writes the .gv file only.
	Format string `yaml:"format"`
}

// LogConfig configures the default slog logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when no config file is given.
func Default() *Config {
	return &Config{
		Sources:   []string{"BAM", "FASTQ"},
		OutputDir: "flowcharts",
		Layout: LayoutConfig{
			Binary: "dot",
			Format: "pdf",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings for values the tool cannot use.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources must list at least one data token")
	}
	seen := map[string]bool{}
	for _, s := range c.Sources {
		if !flowchart.ValidToken(s) {
			return fmt.Errorf("invalid data token %q", s)
		}
		if s[0] >= '0' && s[0] <= '9' {
			return fmt.Errorf("data token %q must not start with a digit", s)
		}
		if seen[s] {
			return fmt.Errorf("data token %q listed twice", s)
		}
		seen[s] = true
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
