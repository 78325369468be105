// Package bedrock is the Amazon Bedrock Converse backend.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"liora/llm"
)

const (
	// An inference profile ID, not the foundation model's ID.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	defaultMaxTokens = 2000
	defaultTopP      = 0.9

	// Schema-shaped output is requested by forcing a call to this tool.
	outputToolName = "emit_result"
	// Tool input must be an object, so other schemas are wrapped under this key.
	wrapKey = "result"
)

var (
	ErrMaxTokens = errors.New("model hit MaxTokens limit")
	ErrBlocked   = errors.New("model response blocked by Bedrock safety filters")
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type LLMOptions struct {
	ModelID   string
	MaxTokens int32
	TopP      float32
}

type LLMClient struct {
	brc  bedrockRuntimeClient
	opts LLMOptions
}

func NewLLMClient(brc bedrockRuntimeClient, opts LLMOptions) *LLMClient {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &LLMClient{brc: brc, opts: opts}
}

func (c *LLMClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "provider", "bedrock", "model", c.opts.ModelID, "stage", req.Stage)

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.opts.MaxTokens
	}

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.opts.ModelID),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: req.User}},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(maxTokens),
			Temperature: aws.Float32(req.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
	}
	if sp := strings.TrimSpace(req.System); sp != "" {
		in.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: sp}}
	}

	wrapped := false
	if req.Schema != nil {
		spec, w, err := buildToolSpec(req.Schema)
		if err != nil {
			return "", err
		}
		wrapped = w
		in.ToolConfig = &types.ToolConfiguration{
			Tools:      []types.Tool{&types.ToolMemberToolSpec{Value: spec}},
			ToolChoice: &types.ToolChoiceMemberTool{Value: types.SpecificToolChoice{Name: aws.String(outputToolName)}},
		}
	}

	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("LLM_CLIENT: Bedrock invoke failed", "error", err, "stage", req.Stage)
		return "", err
	}

	attrs := []any{"stop_reason", out.StopReason}
	if out.Usage != nil {
		attrs = append(attrs,
			"input_tokens", aws.ToInt32(out.Usage.InputTokens),
			"output_tokens", aws.ToInt32(out.Usage.OutputTokens))
	}
	slog.Info("LLM_CLIENT: Bedrock invoke succeeded", attrs...)

	switch out.StopReason {
	case types.StopReasonMaxTokens:
		slog.Warn("LLM_CLIENT: Model hit MaxTokens limit", "max_tokens", maxTokens)
		return "", ErrMaxTokens
	case types.StopReasonGuardrailIntervened, types.StopReasonContentFiltered:
		slog.Warn("LLM_CLIENT: Model response blocked by Bedrock safety filters")
		return "", ErrBlocked
	}

	if req.Schema != nil {
		if s, ok, err := toolOutput(out, wrapped); ok || err != nil {
			return s, err
		}
	}
	return textFromOutput(out), nil
}

// buildToolSpec turns the response schema into the input schema of the
// output tool, wrapping it when it does not describe an object.
func buildToolSpec(schema *jsonschema.Schema) (types.ToolSpecification, bool, error) {
	wrapped := schema.Type != "object"
	if wrapped {
		schema = &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{wrapKey: schema},
			Required:   []string{wrapKey},
		}
	}

	// Round-trip through JSON so the document sees the schema's own encoding.
	raw, err := json.Marshal(schema)
	if err != nil {
		return types.ToolSpecification{}, false, fmt.Errorf("marshal output schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(raw, &schemaMap); err != nil {
		return types.ToolSpecification{}, false, fmt.Errorf("unmarshal output schema: %w", err)
	}

	return types.ToolSpecification{
		Name:        aws.String(outputToolName),
		Description: aws.String("Return the answer in the required structure."),
		InputSchema: &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(schemaMap)},
	}, wrapped, nil
}

// toolOutput returns the JSON input of the first output tool call.
func toolOutput(out *bedrockruntime.ConverseOutput, wrapped bool) (string, bool, error) {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return "", false, nil
	}
	for _, cb := range msg.Value.Content {
		tu, ok := cb.(*types.ContentBlockMemberToolUse)
		if !ok || tu == nil || aws.ToString(tu.Value.Name) != outputToolName || tu.Value.Input == nil {
			continue
		}
		var input map[string]any
		if err := tu.Value.Input.UnmarshalSmithyDocument(&input); err != nil {
			return "", true, fmt.Errorf("decode tool input: %w", err)
		}
		var v any = input
		if wrapped {
			v = input[wrapKey]
		}
		b, err := json.Marshal(v)
		if err != nil {
			return "", true, fmt.Errorf("encode tool input: %w", err)
		}
		return string(b), true, nil
	}
	return "", false, nil
}

// textFromOutput joins the assistant's text blocks with newlines.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return ""
	}
	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}
	return strings.Join(texts, "\n")
}
