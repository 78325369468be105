// Package ollama is the Ollama /api/chat backend.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"liora"
	"liora/llm"
)

type options struct {
	Temperature   float32 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
	NumPredict    int32   `json:"num_predict,omitempty"`
}

type Client struct {
	endpoint   string
	model      string
	httpClient liora.HTTPClient
	options    options
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	TopP         float64
	HTTPClient   liora.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if strings.TrimSpace(opts.ModelID) == "" {
		return nil, fmt.Errorf("ollama: model id is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	topP := opts.TopP
	if topP == 0 {
		topP = 0.9
	}

	return &Client{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   strings.TrimSuffix(opts.BaseEndpoint, "/") + "/api/chat",
		options: options{
			TopP:          topP,
			RepeatPenalty: 1.05,
			NumCtx:        8192,
		},
	}, nil
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireResponse struct {
	Message    wireMessage `json:"message"`
	DoneReason string      `json:"done_reason,omitempty"`
}

type wireRequest struct {
	Model    string          `json:"model"`
	Messages []wireMessage   `json:"messages"`
	Format   json.RawMessage `json:"format,omitempty"`
	Stream   bool            `json:"stream"`
	Options  options         `json:"options,omitempty"`
}

// Complete sends a single-turn chat and returns the model's content verbatim.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "provider", "ollama", "model", c.model, "stage", req.Stage)

	body := wireRequest{
		Model:    c.model,
		Messages: buildMessages(req),
		Stream:   false,
		Options:  c.options,
	}
	body.Options.Temperature = req.Temperature
	body.Options.NumPredict = req.MaxTokens
	if req.Schema != nil {
		format, err := json.Marshal(req.Schema)
		if err != nil {
			return "", fmt.Errorf("marshal response schema: %w", err)
		}
		body.Format = format
	}

	reqBytes, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(raw))
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		slog.Warn("LLM_CLIENT: decode failed, returning raw", "err", err, "body", string(raw))
		return string(raw), nil
	}
	if wr.DoneReason == "length" {
		slog.Warn("LLM_CLIENT: output truncated by num_predict", "stage", req.Stage, "num_predict", req.MaxTokens)
	}
	return wr.Message.Content, nil
}

func buildMessages(req llm.Request) []wireMessage {
	msgs := make([]wireMessage, 0, 2)
	if sp := strings.TrimSpace(req.System); sp != "" {
		msgs = append(msgs, wireMessage{Role: "system", Content: sp})
	}
	return append(msgs, wireMessage{Role: "user", Content: req.User})
}
