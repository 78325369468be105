package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type limited struct {
	next    Completer
	limiter *rate.Limiter
}

// WithRateLimit waits on limiter before every call to next.
func WithRateLimit(next Completer, limiter *rate.Limiter) Completer {
	return &limited{next: next, limiter: limiter}
}

func (l *limited) Complete(ctx context.Context, req Request) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return l.next.Complete(ctx, req)
}
