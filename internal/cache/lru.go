package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache keeps embeddings in process memory with LRU eviction.
type LRUCache struct {
	cache *lru.Cache[string, []float32]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewLRU creates an in-memory cache holding up to capacity embeddings
func NewLRU(capacity int) (*LRUCache, error) {
	c, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &LRUCache{cache: c}, nil
}

// Get retrieves an embedding, returning false on a miss
func (c *LRUCache) Get(_ context.Context, key string) ([]float32, bool, error) {
	embedding, ok := c.cache.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	return embedding, true, nil
}

// Set stores a copy of the embedding so callers can reuse their slice
func (c *LRUCache) Set(_ context.Context, key string, embedding []float32) error {
	stored := make([]float32, len(embedding))
	copy(stored, embedding)
	c.cache.Add(key, stored)
	return nil
}

// Len returns the number of cached embeddings
func (c *LRUCache) Len(_ context.Context) (int, error) {
	return c.cache.Len(), nil
}

// Purge removes all cached embeddings
func (c *LRUCache) Purge(_ context.Context) error {
	c.cache.Purge()
	return nil
}

// Stats returns hit/miss counters
func (c *LRUCache) Stats() Stats {
	return newStats(c.hits.Load(), c.misses.Load())
}

// Close is a no-op for the in-memory backend
func (c *LRUCache) Close() error {
	return nil
}
