package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/laminakit/lamina/internal/vectors"
)

// redisKeyPrefix namespaces cache entries so Purge and Len only touch ours.
const redisKeyPrefix = "lamina:emb:"

// RedisCache shares embeddings across processes through Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedis connects to Redis using the configured DSN and verifies the
// connection with a ping before returning.
func NewRedis(cfg Config) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

// Get retrieves an embedding, returning false on a miss. A corrupt value
// counts as a miss so the caller re-embeds and overwrites it.
func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		c.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read from redis: %w", err)
	}

	embedding := vectors.Decode(data)
	if embedding == nil {
		c.misses.Add(1)
		return nil, false, nil
	}

	c.hits.Add(1)
	return embedding, true, nil
}

// Set stores an embedding, honoring the configured TTL
func (c *RedisCache) Set(ctx context.Context, key string, embedding []float32) error {
	if err := c.client.Set(ctx, redisKeyPrefix+key, vectors.Encode(embedding), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write to redis: %w", err)
	}
	return nil
}

// Len counts cached embeddings by scanning the key prefix
func (c *RedisCache) Len(ctx context.Context) (int, error) {
	count := 0
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan redis keys: %w", err)
	}
	return count, nil
}

// Purge deletes every cached embedding under the key prefix
func (c *RedisCache) Purge(ctx context.Context) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan redis keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete redis keys: %w", err)
	}
	return nil
}

// Stats returns hit/miss counters
func (c *RedisCache) Stats() Stats {
	return newStats(c.hits.Load(), c.misses.Load())
}

// Close releases the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
