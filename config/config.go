package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete journal configuration
type Config struct {
	Import  ImportConfig  `json:"import" yaml:"import"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// ImportConfig contains CSV/JSON import parameters
type ImportConfig struct {
	// FallbackYear substitutes for truncated three-digit years in dates.
	FallbackYear int `json:"fallback_year" yaml:"fallback_year"`
	// DefaultBalance seeds accounts created on the fly during import.
	DefaultBalance float64 `json:"default_balance" yaml:"default_balance"`
}

// MetricsConfig contains analytics parameters
type MetricsConfig struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
}

// StorageConfig contains snapshot persistence parameters
type StorageConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Import.FallbackYear < 1900 || c.Import.FallbackYear > 2200 {
		return fmt.Errorf("import.fallback_year %d out of range", c.Import.FallbackYear)
	}
	if c.Import.DefaultBalance < 0 {
		return fmt.Errorf("import.default_balance must not be negative")
	}
	if c.Metrics.InitialCapital < 0 {
		return fmt.Errorf("metrics.initial_capital must not be negative")
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			FallbackYear:   2025,
			DefaultBalance: 100000,
		},
		Metrics: MetricsConfig{
			InitialCapital: 0,
		},
		Storage: StorageConfig{
			DBPath: "./tradebook.sqlite",
		},
	}
}
