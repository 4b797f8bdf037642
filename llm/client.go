package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/medops/hospital-assistant/common/logger"
	"github.com/medops/hospital-assistant/common/retry"
	"github.com/medops/hospital-assistant/config"
	"github.com/medops/hospital-assistant/schema"
)

// Client wraps the chat-completion capability of an OpenAI-compatible
// endpoint. Both pipeline stages share one client and one model; they
// differ only in system instruction and tool declarations.
type Client struct {
	oc      openai.Client
	cfg     config.LLMConfig
	retries int
	delay   time.Duration
}

// Completion is the normalized result of one generation call.
type Completion struct {
	Content     string
	Invocations []schema.ToolInvocation
}

func New(cfg config.LLMConfig, rcfg config.RetryConfig) *Client {
	// attempt policy lives in common/retry, not in the SDK
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		oc:      openai.NewClient(opts...),
		cfg:     cfg,
		retries: rcfg.MaxRetries,
		delay:   time.Duration(rcfg.DelayMs) * time.Millisecond,
	}
}

// Complete performs one chat completion with bounded retry. The name
// tags attempt logs and metrics per call site. A failure of the final
// attempt is returned to the caller; fallback policy is the caller's.
func (c *Client) Complete(ctx context.Context, name string, msgs []openai.ChatCompletionMessageParamUnion, tools []openai.ChatCompletionToolUnionParam) (*Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Messages:    msgs,
		Temperature: openai.Float(c.cfg.Temperature),
	}
	if c.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.cfg.MaxTokens))
	}
	if len(tools) > 0 {
		params.Tools = tools
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		}
	}

	resp, err := retry.Do(ctx, name, c.retries, c.delay, func(ctx context.Context) (*openai.ChatCompletion, error) {
		return c.oc.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: completion returned no choices", name)
	}

	msg := resp.Choices[0].Message
	out := &Completion{Content: msg.Content}
	for i, tc := range msg.ToolCalls {
		out.Invocations = append(out.Invocations, schema.ToolInvocation{
			Index:     i + 1,
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	logger.Debugf("%s: content=%d bytes invocations=%d", name, len(out.Content), len(out.Invocations))
	return out, nil
}

// ToParams converts transcript messages into request parameters.
// Tool-role entries never enter the transcript, so only the three chat
// roles are mapped.
func ToParams(msgs []schema.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case schema.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case schema.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		case schema.RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
