package common

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is a typed view over an expiring in-process go-cache store.
type Cache[V any] struct {
	store *cache.Cache
}

// NewCache returns a cache whose entries live for ttl after their last Set.
// Expired entries are swept every cleanup interval.
func NewCache[V any](ttl, cleanup time.Duration) *Cache[V] {
	return &Cache[V]{store: cache.New(ttl, cleanup)}
}

func (c *Cache[V]) Set(key string, value V) {
	c.store.SetDefault(key, value)
}

// Get reports false for missing, expired or foreign-typed entries.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	v, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}

	typed, ok := v.(V)
	if !ok {
		return zero, false
	}

	return typed, true
}

func (c *Cache[V]) Len() int {
	return c.store.ItemCount()
}

func (c *Cache[V]) Flush() {
	c.store.Flush()
}
