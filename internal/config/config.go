// Package config holds the analyzer host configuration. The engine itself
// takes no configuration; everything here tunes the surfaces around it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all analyzer configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Analysis run settings
	Analysis AnalysisConfig `yaml:"analysis"`

	// Result persistence
	Store StoreConfig `yaml:"store"`

	// Batch corpus runs
	Batch BatchConfig `yaml:"batch"`

	// Spool directory watching
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// AnalysisConfig configures a single analysis run.
type AnalysisConfig struct {
	// Timeout bounds one submission end to end.
	Timeout string `yaml:"timeout"`

	// OutputDir receives analysis.json when no explicit directory is given.
	OutputDir string `yaml:"output_dir"`
}

// StoreConfig configures result persistence.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// BatchConfig configures concurrent corpus runs.
type BatchConfig struct {
	// Workers bounds concurrent submissions. Each worker owns its parser.
	Workers int `yaml:"workers"`

	// FailFast stops the corpus run on the first processing error.
	FailFast bool `yaml:"fail_fast"`
}

// WatchConfig configures the spool watcher.
type WatchConfig struct {
	// Debounce is how long a file must stay quiet before it is analyzed.
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty means stderr only

	// Rotation settings for the file sink
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "javascript-analyzer",
		Version: "1.0.0",

		Analysis: AnalysisConfig{
			Timeout:   "30s",
			OutputDir: ".",
		},

		Store: StoreConfig{
			DatabasePath: "data/analyses.db",
		},

		Batch: BatchConfig{
			Workers:  4,
			FailFast: false,
		},

		Watch: WatchConfig{
			Debounce: "500ms",
		},

		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   false,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
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

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("ANALYZER_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if level := os.Getenv("ANALYZER_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("ANALYZER_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
}

// GetAnalysisTimeout returns the per-run timeout as a duration.
func (c *Config) GetAnalysisTimeout() time.Duration {
	d, err := time.ParseDuration(c.Analysis.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetDebounce returns the watch debounce window as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// ValidLevels lists the accepted logging levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.Batch.Workers)
	}

	validLevel := false
	for _, l := range ValidLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}

	return nil
}
