// Package cache provides the facade's result cache and per-key request
// coalescing. Cached values are read-only snapshots; staleness is
// judged purely by elapsed wall-clock time since capture.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a minimal key-value cache contract. Implementations degrade
// gracefully so callers can always fall back to the backend.
type Cache interface {
	// Get returns the raw bytes for key. ok=false on a miss or a stale
	// entry.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with the given validity window.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
}

type entry struct {
	payload    []byte
	capturedAt time.Time
	ttl        time.Duration
}

// Memory is the in-process cache. Entries are never evicted beyond the
// staleness check; unbounded growth is an accepted limitation for the
// small, fixed set of hot query keys this serves.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.now().Sub(e.capturedAt) >= e.ttl {
		return nil, false, nil
	}
	return e.payload, true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = entry{payload: value, capturedAt: m.now(), ttl: ttl}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
