// Package config holds the covgen CLI's YAML configuration, following the
// same load/env-override/validate shape used throughout this module's
// teacher lineage.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the covgen CLI configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Coverage CoverageConfig `yaml:"coverage"`
	Generate GenerateConfig `yaml:"generate"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// LoggingConfig contains general logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CoverageConfig contains coverage database persistence settings.
type CoverageConfig struct {
	ExportPath   string `yaml:"export_path"`
	ExportFormat string `yaml:"export_format"` // "xml" or "yaml"
}

// GenerateConfig contains coverage-driven generation-loop settings.
type GenerateConfig struct {
	Rounds  int    `yaml:"rounds"`
	Seed    int64  `yaml:"seed"`
	LogPath string `yaml:"log_path"`
}

// MetricsConfig contains Prometheus exporter settings.
type MetricsConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	Refresh time.Duration `yaml:"refresh"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Coverage: CoverageConfig{
			ExportPath:   "./coverage.xml",
			ExportFormat: "xml",
		},
		Generate: GenerateConfig{
			Rounds:  100,
			Seed:    0,
			LogPath: "./covgen-rounds.jsonl",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9464",
			Refresh: 5 * time.Second,
		},
	}
}

// Load loads configuration from a YAML file, expanding ${VAR}/$VAR
// references against the environment before parsing. A COVGEN_SEED
// environment variable, if set, takes priority over the file's
// generate.seed the same way PROMETHEUS_URL overrode the teacher's
// prometheus.url.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "covgen.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if seedEnv := os.Getenv("COVGEN_SEED"); seedEnv != "" {
		var seed int64
		if _, err := fmt.Sscanf(seedEnv, "%d", &seed); err == nil {
			cfg.Generate.Seed = seed
		}
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Coverage.ExportFormat != "xml" && c.Coverage.ExportFormat != "yaml" {
		return fmt.Errorf("coverage.export_format must be \"xml\" or \"yaml\", got %q", c.Coverage.ExportFormat)
	}
	if c.Generate.Rounds < 1 {
		return fmt.Errorf("generate.rounds must be at least 1")
	}
	return nil
}
