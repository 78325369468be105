package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"liora"
)

type countingCompleter struct {
	calls int
	out   string
	err   error
}

func (c *countingCompleter) Complete(_ context.Context, _ Request) (string, error) {
	c.calls++
	return c.out, c.err
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("cache down")
}

func TestCacheKey(t *testing.T) {
	base := Request{Stage: "name", System: "s", User: "u", Temperature: 0.7}

	assert.Equal(t, CacheKey("openai/gpt", base), CacheKey("openai/gpt", base))
	assert.Regexp(t, `^llm:[0-9a-f]{64}$`, CacheKey("openai/gpt", base))

	other := base
	other.Temperature = 0.3
	assert.NotEqual(t, CacheKey("openai/gpt", base), CacheKey("openai/gpt", other))
	assert.NotEqual(t, CacheKey("openai/gpt", base), CacheKey("ollama/llama", base))
}

func TestWithCache(t *testing.T) {
	ctx := context.Background()
	next := &countingCompleter{out: "respuesta"}
	cache := NewMapCache()
	c := WithCache(next, cache, "openai/gpt", time.Hour)

	for range 3 {
		out, err := c.Complete(ctx, Request{User: "hola"})
		require.NoError(t, err)
		assert.Equal(t, "respuesta", out)
	}
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, cache.Len())

	_, err := c.Complete(ctx, Request{User: "adiós"})
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestWithCache_ErrorsNotCached(t *testing.T) {
	next := &countingCompleter{err: errors.New("boom")}
	cache := NewMapCache()
	c := WithCache(next, cache, "m", 0)

	_, err := c.Complete(context.Background(), Request{User: "hola"})
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestWithCache_FailingCacheFallsThrough(t *testing.T) {
	next := &countingCompleter{out: "ok"}
	c := WithCache(next, failingCache{}, "m", time.Minute)

	out, err := c.Complete(context.Background(), Request{User: "hola"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, next.calls)
}

func TestRedisCache_UnreachableFallsThrough(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	next := &countingCompleter{out: "ok"}
	c := WithCache(next, NewRedisCache(client), "m", time.Minute)

	out, err := c.Complete(context.Background(), Request{User: "hola"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestWithRateLimit(t *testing.T) {
	next := &countingCompleter{out: "ok"}
	c := WithRateLimit(next, rate.NewLimiter(rate.Inf, 1))

	_, err := c.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := WithRateLimit(next, rate.NewLimiter(rate.Every(time.Hour), 0))
	_, err = blocked.Complete(ctx, Request{})
	assert.Error(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestProviders(t *testing.T) {
	next := &countingCompleter{out: "ok"}
	p := Providers{
		"fake": func(context.Context, liora.ModelConfig, liora.ProviderConfig) (Completer, error) { return next, nil },
		"broken": func(context.Context, liora.ModelConfig, liora.ProviderConfig) (Completer, error) {
			return nil, errors.New("no credentials")
		},
	}
	assert.Equal(t, []string{"broken", "fake"}, p.Names())

	cache := NewMapCache()
	c, err := p.Build(context.Background(), liora.ModelConfig{Provider: "fake", ModelID: "x", RatePerSecond: 100}, liora.ProviderConfig{}, Options{Cache: cache})
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), Request{User: "hola"})
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), Request{User: "hola"})
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)

	_, err = p.Build(context.Background(), liora.ModelConfig{Provider: "broken"}, liora.ProviderConfig{}, Options{})
	assert.ErrorContains(t, err, "create broken client")

	_, err = p.Build(context.Background(), liora.ModelConfig{Provider: "missing"}, liora.ProviderConfig{}, Options{})
	assert.ErrorContains(t, err, "not found in registry")
}
