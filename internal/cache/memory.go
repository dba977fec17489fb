package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"pdf-assistant-api/internal/shared/metrics"
)

// Memory is an in-process cache. Expired entries are evicted lazily on read
// and on invalidation; no background janitor runs.
type Memory struct {
	items *gocache.Cache
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{items: gocache.New(gocache.NoExpiration, 0)}
}

func (m *Memory) Get(_ context.Context, key string, dest any) bool {
	raw, ok := m.items.Get(key)
	if !ok {
		// go-cache keeps expired items until deleted.
		m.items.Delete(key)
		metrics.ObserveCache(key, false)
		return false
	}
	data, ok := raw.([]byte)
	if !ok || json.Unmarshal(data, dest) != nil {
		m.items.Delete(key)
		metrics.ObserveCache(key, false)
		return false
	}
	metrics.ObserveCache(key, true)
	return true
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.items.Set(key, data, ttl)
}

func (m *Memory) Invalidate(_ context.Context, prefix string) {
	m.items.DeleteExpired()
	for key := range m.items.Items() {
		if strings.HasPrefix(key, prefix) {
			m.items.Delete(key)
		}
	}
}

// Len reports the number of stored entries, including expired ones not yet evicted.
func (m *Memory) Len() int {
	return m.items.ItemCount()
}

var _ Cache = (*Memory)(nil)
