// Package storage provides the durable key/value slots the client keeps
// between sessions: the search history and the theme preference.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"weather-lookup/datasource"
)

// KV is a minimal durable key/value store
type KV interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open creates the backend selected by the configuration
func Open(ctx context.Context, config *datasource.Config, logger *slog.Logger) (KV, error) {
	switch config.Storage.Driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(config.Storage.Path, logger)
	case "postgres":
		return NewPostgres(ctx, config.Storage.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}
}
