// Package cli implements the command-line surface of the tracker: one
// subcommand per run, shared process setup and error-to-exit-code mapping.
package cli

import (
	"log/slog"

	"github.com/joho/godotenv"

	applog "expenses/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging at the given level and sets
// the result as the default logger. Unknown levels fall back to info.
func SetupLogger(level string) *applog.Logger {
	parsed, err := applog.ParseLevel(level)
	if err != nil {
		parsed = slog.LevelInfo
	}
	logger := applog.New(applog.Config{Level: parsed})
	applog.SetDefault(logger)
	return logger
}
