package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"weather-lookup/models"
	"weather-lookup/storage"
)

// StorageKey is the storage slot holding the JSON-encoded history
const StorageKey = "weather_search_history"

// KVStore persists the history as a JSON array in a storage.KV
type KVStore struct {
	kv     storage.KV
	logger *slog.Logger
}

var _ Store = (*KVStore)(nil)

func NewKVStore(kv storage.KV, logger *slog.Logger) *KVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &KVStore{kv: kv, logger: logger}
}

// Load returns the stored sequence. Corrupt or non-array data is treated as
// an empty history; only storage failures are returned.
func (s *KVStore) Load(ctx context.Context) ([]models.HistoryEntry, error) {
	raw, found, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if !found || len(raw) == 0 {
		return nil, nil
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.WarnContext(ctx, "discarding malformed search history", slog.Any("error", err))
		return nil, nil
	}
	if len(entries) > Limit {
		entries = entries[:Limit]
	}
	return entries, nil
}

func (s *KVStore) Save(ctx context.Context, entries []models.HistoryEntry) error {
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return s.kv.Set(ctx, StorageKey, raw)
}
