// Package history keeps the bounded, most-recent-first list of successful lookups.
package history

import (
	"context"
	"log/slog"
	"sync"

	"weather-lookup/models"
)

// Limit is the maximum number of remembered lookups
const Limit = 5

// Store persists the history sequence
type Store interface {
	Load(ctx context.Context) ([]models.HistoryEntry, error)
	Save(ctx context.Context, entries []models.HistoryEntry) error
}

// Prepend returns a new sequence with entry at the front, any entry sharing its
// deduplication key removed, capped to limit.
func Prepend(entries []models.HistoryEntry, entry models.HistoryEntry, limit int) []models.HistoryEntry {
	next := make([]models.HistoryEntry, 0, len(entries)+1)
	next = append(next, entry)
	for _, e := range entries {
		if !e.SameAs(entry) {
			next = append(next, e)
		}
	}
	if len(next) > limit {
		next = next[:limit]
	}
	return next
}

// History is the in-process view of the persisted sequence
type History struct {
	store   Store
	logger  *slog.Logger
	mu      sync.Mutex
	entries []models.HistoryEntry
}

// New loads the persisted history. A load failure starts with an empty
// history rather than failing the caller.
func New(ctx context.Context, store Store, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.Default()
	}
	h := &History{store: store, logger: logger}

	entries, err := store.Load(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to load search history, starting empty", slog.Any("error", err))
		entries = nil
	}
	if len(entries) > Limit {
		entries = entries[:Limit]
	}
	h.entries = entries
	return h
}

// Entries returns a copy of the current sequence, most recent first
func (h *History) Entries() []models.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]models.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Add moves or inserts entry at position 0 and persists the result.
// The returned sequence is what is now held in memory even if saving failed.
func (h *History) Add(ctx context.Context, entry models.HistoryEntry) []models.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = Prepend(h.entries, entry, Limit)
	if err := h.store.Save(ctx, h.entries); err != nil {
		h.logger.ErrorContext(ctx, "failed to persist search history",
			slog.String("entry", entry.Name),
			slog.Any("error", err))
	}

	out := make([]models.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear forgets every entry
func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Save(ctx, []models.HistoryEntry{}); err != nil {
		return err
	}
	h.entries = nil
	return nil
}
