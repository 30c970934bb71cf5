// Package config loads the livecad.yaml configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up by the CLI.
const DefaultFile = "livecad.yaml"

// Config holds all livecad configuration.
type Config struct {
	// Recipe is a builtin recipe name or a recipe source path.
	Recipe string `yaml:"recipe"`
	// Preset is an ISO thread name applied before Parameters.
	Preset     string             `yaml:"preset,omitempty"`
	Parameters map[string]float64 `yaml:"parameters,omitempty"`

	// Post-processing
	Offset   float64 `yaml:"offset"`
	Weld     float64 `yaml:"weld"`
	Material string  `yaml:"material"`

	Output  OutputConfig  `yaml:"output"`
	Preview PreviewConfig `yaml:"preview"`
	Log     LogConfig     `yaml:"log"`
	Watch   WatchConfig   `yaml:"watch"`
}

// OutputConfig configures mesh export.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // binary, ascii
}

// PreviewConfig configures offscreen preview images.
type PreviewConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Path   string `yaml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Recipe: "hexbolt",
		Output: OutputConfig{
			Path:   "part.stl",
			Format: "binary",
		},
		Preview: PreviewConfig{
			Width:  800,
			Height: 600,
			Path:   "part.png",
		},
		Log: LogConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Debounce: "300ms",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies LIVECAD_* environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("LIVECAD_RECIPE"); v != "" {
		c.Recipe = v
	}
	if v := os.Getenv("LIVECAD_PRESET"); v != "" {
		c.Preset = v
	}
	if v := os.Getenv("LIVECAD_MATERIAL"); v != "" {
		c.Material = v
	}
	if v := os.Getenv("LIVECAD_OUTPUT"); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv("LIVECAD_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("LIVECAD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	for env, dst := range map[string]*float64{
		"LIVECAD_OFFSET": &c.Offset,
		"LIVECAD_WELD":   &c.Weld,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		*dst = f
	}
	return nil
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}
