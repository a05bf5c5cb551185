// Package cache provides embedding caches shared by the embedding clients
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Backend names accepted by New.
const (
	BackendLRU   = "lru"
	BackendRedis = "redis"
)

// DefaultCapacity is the LRU entry limit when none is configured.
const DefaultCapacity = 1000

// Cache stores embeddings keyed by model and input text. Get returns
// false on a miss; backends degrade to misses rather than fail a lookup
// where they can.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, embedding []float32) error
	Len(ctx context.Context) (int, error)
	Purge(ctx context.Context) error
	Stats() Stats
	Close() error
}

// Stats reports hit/miss counters for this process
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Config selects and configures a cache backend
type Config struct {
	Backend  string        // "lru" (default) or "redis"
	Capacity int           // LRU entry capacity
	RedisURL string        // Redis DSN, e.g. redis://localhost:6379/0
	TTL      time.Duration // Redis entry lifetime, 0 keeps entries forever
}

// New creates a cache for the configured backend
func New(cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendLRU:
		capacity := cfg.Capacity
		if capacity <= 0 {
			capacity = DefaultCapacity
		}
		return NewLRU(capacity)
	case BackendRedis:
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

// Key derives the cache key for a model and input text. The model is
// part of the key so switching models never serves stale vectors.
func Key(model, text string) string {
	h := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(h[:16]) // first 16 bytes (128 bits)
}

func newStats(hits, misses int64) Stats {
	s := Stats{Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total) * 100
	}
	return s
}
