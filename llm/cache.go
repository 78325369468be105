package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores completions by request key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CacheKey hashes everything that influences a completion.
func CacheKey(model string, req Request) string {
	payload, _ := json.Marshal(struct {
		Model string
		Request
	}{model, req})
	sum := sha256.Sum256(payload)
	return "llm:" + hex.EncodeToString(sum[:])
}

type cached struct {
	next  Completer
	cache Cache
	model string
	ttl   time.Duration
}

// WithCache answers repeated requests from cache. Cache failures are logged
// and fall through to the wrapped completer.
func WithCache(next Completer, cache Cache, model string, ttl time.Duration) Completer {
	return &cached{next: next, cache: cache, model: model, ttl: ttl}
}

func (c *cached) Complete(ctx context.Context, req Request) (string, error) {
	key := CacheKey(c.model, req)

	if v, ok, err := c.cache.Get(ctx, key); err != nil {
		slog.Warn("LLM_CLIENT: Cache read failed", "stage", req.Stage, "error", err)
	} else if ok {
		slog.Info("LLM_CLIENT: Cache hit", "stage", req.Stage)
		return v, nil
	}

	out, err := c.next.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, out, c.ttl); err != nil {
		slog.Warn("LLM_CLIENT: Cache write failed", "stage", req.Stage, "error", err)
	}
	return out, nil
}

// MapCache is an in-process Cache. Entries never expire.
type MapCache struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMapCache() *MapCache {
	return &MapCache{m: make(map[string]string)}
}

func (c *MapCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok, nil
}

func (c *MapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return nil
}

func (c *MapCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// RedisCache stores completions in Redis.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}
