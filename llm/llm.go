// Package llm is the text-generation seam shared by every backend.
package llm

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// Request is one single-turn chat completion.
type Request struct {
	// Stage names the pipeline step, for logs only.
	Stage       string
	System      string
	User        string
	Temperature float32
	MaxTokens   int32
	// Schema, when set, asks the backend for output matching it. Backends
	// without structured output ignore it.
	Schema *jsonschema.Schema
}

type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
