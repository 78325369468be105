package llm

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/time/rate"

	"liora"
)

// Factory builds a backend from configuration.
type Factory func(ctx context.Context, model liora.ModelConfig, providers liora.ProviderConfig) (Completer, error)

// Providers maps provider names to factories.
type Providers map[string]Factory

// Names returns the registered provider names, sorted.
func (p Providers) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get retrieves a factory by name.
func (p Providers) Get(name string) (Factory, error) {
	f, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not found in registry (have %v)", name, p.Names())
	}
	return f, nil
}

// Options are the decorators applied by Build.
type Options struct {
	Cache    Cache
	CacheTTL time.Duration
}

// Build creates the configured provider and wraps it with a rate limit and,
// when opts.Cache is set, a response cache. Cached answers skip the limiter.
func (p Providers) Build(ctx context.Context, model liora.ModelConfig, providers liora.ProviderConfig, opts Options) (Completer, error) {
	f, err := p.Get(model.Provider)
	if err != nil {
		return nil, err
	}
	c, err := f(ctx, model, providers)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", model.Provider, err)
	}
	if model.RatePerSecond > 0 {
		c = WithRateLimit(c, rate.NewLimiter(rate.Limit(model.RatePerSecond), 1))
	}
	if opts.Cache != nil {
		c = WithCache(c, opts.Cache, model.Provider+"/"+model.ModelID, opts.CacheTTL)
	}
	return c, nil
}
