// Package backends registers the available LLM providers.
package backends

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"liora"
	"liora/llm"
	"liora/llm/bedrock"
	"liora/llm/ollama"
	"liora/llm/openai"
)

// Registry returns every provider keyed by its LLM_PROVIDER name.
func Registry() llm.Providers {
	return llm.Providers{
		"openai":  newOpenAI,
		"ollama":  newOllama,
		"bedrock": newBedrock,
	}
}

func newOpenAI(_ context.Context, m liora.ModelConfig, p liora.ProviderConfig) (llm.Completer, error) {
	if p.OpenAIAPIKey == "" && p.OpenAIBaseURL == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	return openai.NewClient(openai.Options{
		APIKey:           p.OpenAIAPIKey,
		BaseURL:          p.OpenAIBaseURL,
		Model:            m.ModelID,
		MaxTokens:        m.MaxTokens,
		Timeout:          m.Timeout,
		StructuredOutput: p.OpenAIStructured,
	}), nil
}

func newOllama(_ context.Context, m liora.ModelConfig, p liora.ProviderConfig) (llm.Completer, error) {
	return ollama.NewClient(ollama.ClientOpts{
		BaseEndpoint: p.BaseOllamaEndpoint,
		ModelID:      m.ModelID,
		TopP:         float64(m.TopP),
		HTTPClient:   &http.Client{Timeout: m.Timeout},
	})
}

func newBedrock(ctx context.Context, m liora.ModelConfig, _ liora.ProviderConfig) (llm.Completer, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return bedrock.NewLLMClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.LLMOptions{
		ModelID:   m.ModelID,
		MaxTokens: m.MaxTokens,
		TopP:      m.TopP,
	}), nil
}
