package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid json backend config",
			config: Config{
				DataFile:    "./expenses.json",
				DataBackend: "json",
				LogLevel:    "info",
				ExportFile:  "expenses.csv",
			},
			wantErr: false,
		},
		{
			name: "valid memory backend config",
			config: Config{
				DataFile:    "./expenses.json",
				DataBackend: "memory",
				LogLevel:    "debug",
				ExportFile:  "expenses.csv",
			},
			wantErr: false,
		},
		{
			name: "empty data file",
			config: Config{
				DataFile:    "",
				DataBackend: "json",
				LogLevel:    "info",
				ExportFile:  "expenses.csv",
			},
			wantErr: true,
		},
		{
			name: "invalid data backend",
			config: Config{
				DataFile:    "./expenses.json",
				DataBackend: "sqlite",
				LogLevel:    "info",
				ExportFile:  "expenses.csv",
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			config: Config{
				DataFile:    "./expenses.json",
				DataBackend: "json",
				LogLevel:    "loud",
				ExportFile:  "expenses.csv",
			},
			wantErr: true,
		},
		{
			name: "empty export file",
			config: Config{
				DataFile:    "./expenses.json",
				DataBackend: "json",
				LogLevel:    "info",
				ExportFile:  "",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataBackend != "json" {
		t.Fatalf("expected json backend default, got %q", cfg.DataBackend)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected info default, got %q", cfg.LogLevel)
	}
	if filepath.Base(cfg.DataFile) != ".expenses.json" {
		t.Fatalf("unexpected data file default %q", cfg.DataFile)
	}
	if cfg.ExportFile != "expenses.csv" {
		t.Fatalf("unexpected export default %q", cfg.ExportFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXPENSES_DATA_FILE", "/tmp/data.json")
	t.Setenv("EXPENSES_DATA_BACKEND", "memory")
	t.Setenv("EXPENSES_LOG_LEVEL", "error")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataFile != "/tmp/data.json" {
		t.Fatalf("data file override not applied: %q", cfg.DataFile)
	}
	if cfg.DataBackend != "memory" {
		t.Fatalf("backend override not applied: %q", cfg.DataBackend)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("log level override not applied: %q", cfg.LogLevel)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "data-file: /tmp/from-yaml.json\nlog-level: warn\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataFile != "/tmp/from-yaml.json" {
		t.Fatalf("yaml data file not applied: %q", cfg.DataFile)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("yaml log level not applied: %q", cfg.LogLevel)
	}
	// Untouched keys keep their defaults.
	if cfg.DataBackend != "json" {
		t.Fatalf("expected default backend, got %q", cfg.DataBackend)
	}

	// Env still wins over the file.
	t.Setenv("EXPENSES_LOG_LEVEL", "error")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("env should override yaml, got %q", cfg.LogLevel)
	}
}

func TestLoadMissingConfigFileFails(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvConfigFile,
		"EXPENSES_DATA_FILE",
		"EXPENSES_DATA_BACKEND",
		"EXPENSES_LOG_LEVEL",
		"EXPENSES_EXPORT_FILE",
	} {
		t.Setenv(key, "")
	}
}
