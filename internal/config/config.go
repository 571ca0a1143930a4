package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigFile points at an optional YAML config file.
	EnvConfigFile = "EXPENSES_CONFIG"

	defaultDataName   = ".expenses.json"
	defaultExportName = "expenses.csv"
)

type Config struct {
	// Path of the JSON data file holding all expense records.
	DataFile string `yaml:"data-file"`

	// Storage backend: "json" or "memory".
	DataBackend string `yaml:"data-backend"`

	// Log level: debug, info, warn or error.
	LogLevel string `yaml:"log-level"`

	// Default file name for CSV export.
	ExportFile string `yaml:"export-file"`
}

func defaults() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataFile:    filepath.Join(home, defaultDataName),
		DataBackend: "json",
		LogLevel:    "info",
		ExportFile:  defaultExportName,
	}
}

// Load builds the configuration from defaults, an optional YAML file named
// by EXPENSES_CONFIG, and environment variable overrides, in that order.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv(EnvConfigFile); path != "" {
		rawYAML, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(rawYAML, &cfg); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	}

	cfg.DataFile = getEnv("EXPENSES_DATA_FILE", cfg.DataFile)
	cfg.DataBackend = getEnv("EXPENSES_DATA_BACKEND", cfg.DataBackend)
	cfg.LogLevel = getEnv("EXPENSES_LOG_LEVEL", cfg.LogLevel)
	cfg.ExportFile = getEnv("EXPENSES_EXPORT_FILE", cfg.ExportFile)

	return &cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.DataFile == "" {
		errors = append(errors, "data file path cannot be empty")
	}

	validBackends := []string{"json", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	if c.ExportFile == "" {
		errors = append(errors, "export file name cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
