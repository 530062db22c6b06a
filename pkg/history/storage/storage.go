package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/history"
)

var errClosed = errors.New("storage is closed")

// New creates the backend selected by cfg.Backend.
func New(cfg *config.HistoryConfig, logger *slog.Logger) (history.Storage, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStorage(), nil
	case "sqlite":
		return NewSQLiteStorage(cfg.SQLite, logger)
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", cfg.Backend)
	}
}
