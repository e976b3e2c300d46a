package storage

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// Memory keeps values in process memory; nothing survives a restart
type Memory struct {
	c *cache.Cache
}

var _ KV = (*Memory)(nil)

// NewMemory creates an empty in-memory store whose entries never expire
func NewMemory() *Memory {
	return &Memory{c: cache.New(cache.NoExpiration, 0)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, found := m.c.Get(key)
	if !found {
		return nil, false, nil
	}
	stored := v.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.c.Set(key, stored, cache.NoExpiration)
	return nil
}

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}
