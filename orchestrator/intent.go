package orchestrator

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v2"

	"github.com/medops/hospital-assistant/llm"
	"github.com/medops/hospital-assistant/querydb"
	"github.com/medops/hospital-assistant/schema"
)

// Resolution is the outcome of the intent stage: explanatory content,
// tool invocations, or both at once.
type Resolution struct {
	Content     string
	Invocations []schema.ToolInvocation
}

// IntentResolver classifies one user turn against the conversation so
// far and produces a Resolution. A failure here is fatal for the turn.
type IntentResolver interface {
	Resolve(ctx context.Context, transcript []schema.ChatMessage) (*Resolution, error)
}

// Resolver is the generation-backed intent stage. It declares exactly
// one callable capability (execute_query) and lets the model decide.
type Resolver struct {
	client *llm.Client
	window int
}

func NewResolver(client *llm.Client, contextTokens int) *Resolver {
	return &Resolver{client: client, window: contextTokens}
}

func (r *Resolver) Resolve(ctx context.Context, transcript []schema.ChatMessage) (*Resolution, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(transcript)+1)
	msgs = append(msgs, openai.SystemMessage(intentSystemPrompt))
	msgs = append(msgs, llm.ToParams(llm.Window(transcript, r.window))...)

	comp, err := r.client.Complete(ctx, "intent_resolution", msgs, queryToolDeclarations())
	if err != nil {
		return nil, err
	}
	return &Resolution{
		Content:     strings.TrimSpace(comp.Content),
		Invocations: comp.Invocations,
	}, nil
}

func queryToolDeclarations() []openai.ChatCompletionToolUnionParam {
	return []openai.ChatCompletionToolUnionParam{
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        querydb.ToolName,
			Description: openai.String("Executes a SQL query on the hospital database"),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "SQL query to execute",
					},
				},
				"required": []string{"query"},
			},
		}),
	}
}
