// Package openai is the OpenAI chat-completions backend.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"liora"
	"liora/llm"
)

const (
	defaultModel     = openai.GPT3Dot5Turbo
	defaultMaxTokens = 2000
	defaultTimeout   = 30 * time.Second
)

var ErrNoChoices = errors.New("no response choices from OpenAI")

type Options struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int32
	Timeout   time.Duration
	// StructuredOutput sends Request.Schema as a json_schema response
	// format. Only newer models accept it.
	StructuredOutput bool
	HTTPClient       liora.HTTPClient
}

type Client struct {
	api  *openai.Client
	opts Options
}

func NewClient(opts Options) *Client {
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	return &Client{api: openai.NewClientWithConfig(cfg), opts: opts}
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.opts.MaxTokens
	}

	chat := openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		Temperature: req.Temperature,
		MaxTokens:   int(maxTokens),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	}
	if c.opts.StructuredOutput && req.Schema != nil {
		schema, err := json.Marshal(req.Schema)
		if err != nil {
			return "", fmt.Errorf("marshal response schema: %w", err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Stage,
				Schema: json.RawMessage(schema),
			},
		}
	}

	slog.Info("LLM_CLIENT: Invoked", "provider", "openai", "model", c.opts.Model, "stage", req.Stage)

	resp, err := c.api.CreateChatCompletion(ctx, chat)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	slog.Info("LLM_CLIENT: OpenAI invoke succeeded",
		"finish_reason", resp.Choices[0].FinishReason,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp.Choices[0].Message.Content, nil
}
