package backend

import (
	"fmt"

	"expenses/internal/config"
	applog "expenses/internal/log"
	"expenses/internal/storage"
)

// New creates the store selected by the configuration.
func New(cfg *config.Config, logger *applog.Logger) (Store, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentStorage)

	backendType := BackendType(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid data backend: %s", cfg.DataBackend)
	}

	switch backendType {
	case MemoryBackend:
		logger.Debug("initialized memory backend", applog.FieldBackend, backendType.String())
		return storage.NewMemoryRepository(), nil
	default:
		logger.Debug("initialized json backend",
			applog.FieldBackend, backendType.String(),
			applog.FieldPath, cfg.DataFile)
		return storage.NewJSONRepository(cfg.DataFile), nil
	}
}
