package history

import (
	"context"
	"sync"

	"weather-lookup/models"
)

// MemoryStore keeps the sequence in process memory
type MemoryStore struct {
	mu      sync.Mutex
	entries []models.HistoryEntry
	saves   int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(initial ...models.HistoryEntry) *MemoryStore {
	return &MemoryStore{entries: initial}
}

func (m *MemoryStore) Load(context.Context) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.HistoryEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, entries []models.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make([]models.HistoryEntry, len(entries))
	copy(m.entries, entries)
	m.saves++
	return nil
}

// Saves reports how many times Save was called
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
