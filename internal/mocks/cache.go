package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/phrazzld/prep-api/internal/platform/cache"
)

// MemoryCache is an in-process cache.Cache that records what it stores.
// Values round-trip through JSON like the redis implementation.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte

	// GetErr, SetErr and DeleteErr, when set, are returned by the
	// corresponding method instead of touching the entries.
	GetErr    error
	SetErr    error
	DeleteErr error

	Deleted []string
}

var _ cache.Cache = (*MemoryCache)(nil)

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return false, c.GetErr
	}
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *MemoryCache) Set(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SetErr != nil {
		return c.SetErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Deleted = append(c.Deleted, keys...)
	if c.DeleteErr != nil {
		return c.DeleteErr
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

// Has reports whether key currently holds a value.
func (c *MemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
