package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"

	"github.com/medops/hospital-assistant/llm"
	"github.com/medops/hospital-assistant/schema"
)

// Synthesizer merges a turn bundle into one final user-facing message.
// A failure here is recoverable: the orchestrator substitutes a fixed
// apology, since this is the last hop before the user.
type Synthesizer interface {
	Synthesize(ctx context.Context, transcript []schema.ChatMessage, bundle *schema.TurnBundle) (string, error)
}

// Synth is the generation-backed synthesis stage. It declares no tools.
type Synth struct {
	client *llm.Client
	window int
}

func NewSynth(client *llm.Client, contextTokens int) *Synth {
	return &Synth{client: client, window: contextTokens}
}

func (s *Synth) Synthesize(ctx context.Context, transcript []schema.ChatMessage, bundle *schema.TurnBundle) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(transcript)+len(bundle.Results)+2)
	msgs = append(msgs, openai.SystemMessage(synthesisSystemPrompt))
	msgs = append(msgs, llm.ToParams(llm.Window(transcript, s.window))...)

	// Envelopes are always included, in invocation-index order, as tool
	// messages with synthetic call ids.
	for _, res := range bundle.Results {
		msgs = append(msgs, openai.ToolMessage(res.Result, fmt.Sprintf("call_%d", res.Index)))
	}
	// Direct fragments ride along unless they are pure placeholder
	// noise.
	if txt := bundle.FragmentText(); txt != "" && !bundle.OnlyPlaceholders() {
		msgs = append(msgs, openai.AssistantMessage(txt))
	}

	comp, err := s.client.Complete(ctx, "response_synthesis", msgs, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(comp.Content), nil
}
