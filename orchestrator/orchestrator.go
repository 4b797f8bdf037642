package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/medops/hospital-assistant/common/logger"
	"github.com/medops/hospital-assistant/metrics"
	"github.com/medops/hospital-assistant/schema"
	"github.com/medops/hospital-assistant/tools"
)

// Fixed user-facing fallback strings. Internal failure detail never
// leaves the logging channel.
const (
	placeholderFragmentFmt = "%d. Couldn't process part of your request. Try rephrasing."
	msgCouldNotUnderstand  = "Sorry, I couldn't understand. Try rephrasing."
	msgApology             = "Sorry, there was an issue processing your request. Please try again in a moment."
)

// State names the positions of the turn state machine.
type State int

const (
	StateIdle State = iota
	StateAwaitingIntent
	StateDirectReply
	StateAwaitingQueries
	StateAwaitingSynthesis
	StateDone
	StateErrorFallback
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingIntent:
		return "awaiting_intent"
	case StateDirectReply:
		return "direct_reply"
	case StateAwaitingQueries:
		return "awaiting_queries"
	case StateAwaitingSynthesis:
		return "awaiting_synthesis"
	case StateDone:
		return "done"
	case StateErrorFallback:
		return "error_fallback"
	default:
		return "unknown"
	}
}

// Orchestrator is the per-session turn state machine. It is the sole
// owner of the transcript: stages receive snapshot copies, and the only
// mutation is appending. One turn runs at a time; a new turn cannot
// start until the previous one reaches done or error_fallback.
type Orchestrator struct {
	mu         sync.Mutex
	resolver   IntentResolver
	synth      Synthesizer
	registry   *tools.Registry
	transcript []schema.ChatMessage
	state      State
}

func New(resolver IntentResolver, synth Synthesizer, registry *tools.Registry) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		synth:    synth,
		registry: registry,
		state:    StateIdle,
	}
}

// Transcript returns an immutable snapshot copy of the conversation.
func (o *Orchestrator) Transcript() []schema.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot()
}

func (o *Orchestrator) snapshot() []schema.ChatMessage {
	out := make([]schema.ChatMessage, len(o.transcript))
	copy(out, o.transcript)
	return out
}

func (o *Orchestrator) append(role, content string) {
	o.transcript = append(o.transcript, schema.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

func (o *Orchestrator) setState(s State) {
	logger.Debugf("turn state: %s -> %s", o.state, s)
	o.state = s
}

// Turn processes one user utterance to completion and returns the
// final assistant message. The utterance is appended to the transcript
// before any stage runs, so it is recorded even when later stages
// fail; the final message is always appended as the assistant's turn.
func (o *Orchestrator) Turn(ctx context.Context, utterance string) string {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return ""
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	start := time.Now()
	o.append(schema.RoleUser, utterance)

	final, outcome := o.runTurn(ctx)
	o.append(schema.RoleAssistant, final)
	if o.state != StateErrorFallback {
		o.setState(StateDone)
	}
	metrics.ObserveTurn(outcome, start)
	return final
}

func (o *Orchestrator) runTurn(ctx context.Context) (final string, outcome string) {
	o.setState(StateAwaitingIntent)
	res, err := o.resolver.Resolve(ctx, o.snapshot())
	if err != nil {
		logger.Errorf("intent resolution failed after retries: %v", err)
		o.setState(StateErrorFallback)
		return msgApology, "fallback"
	}

	content := strings.TrimSpace(res.Content)
	if len(res.Invocations) == 0 {
		if content == "" {
			// Nothing to work with: neither prose nor invocations.
			return msgCouldNotUnderstand, "placeholder"
		}
		o.setState(StateDirectReply)
		logger.Infof("direct reply, synthesis skipped")
		return content, "direct"
	}

	o.setState(StateAwaitingQueries)
	bundle := o.executeInvocations(ctx, res.Invocations)
	addContentFragments(bundle, content)

	o.setState(StateAwaitingSynthesis)
	final, err = o.synth.Synthesize(ctx, o.snapshot(), bundle)
	if err != nil {
		logger.Errorf("response synthesis failed after retries: %v", err)
		o.setState(StateErrorFallback)
		return msgApology, "fallback"
	}
	if final == "" {
		return msgCouldNotUnderstand, "placeholder"
	}
	return final, "synthesized"
}

// executeInvocations dispatches every recognized invocation and
// collects exactly one envelope per recognized name. Invocations are
// independent, so they run concurrently, each writing once into its
// own slot; slot order preserves invocation index order regardless of
// completion order. Unrecognized names become placeholder fragments
// and never reach a handler.
func (o *Orchestrator) executeInvocations(ctx context.Context, invs []schema.ToolInvocation) *schema.TurnBundle {
	bundle := &schema.TurnBundle{}
	slots := make([]*schema.QueryResult, len(invs))
	var wg sync.WaitGroup
	for i, inv := range invs {
		handler, ok := o.registry.Lookup(inv.Name)
		if !ok {
			logger.Warnf("unsupported capability requested: %q", inv.Name)
			metrics.IncInvocation("unsupported")
			bundle.Fragments = append(bundle.Fragments, schema.Fragment{
				Text:        fmt.Sprintf(placeholderFragmentFmt, inv.Index),
				Placeholder: true,
			})
			continue
		}
		wg.Add(1)
		go func(slot int, inv schema.ToolInvocation, h tools.Handler) {
			defer wg.Done()
			result := h.Execute(ctx, inv.Arguments)
			logger.Infof("capability %s invocation %d executed", inv.Name, inv.Index)
			slots[slot] = &schema.QueryResult{Index: inv.Index, Result: result}
		}(i, inv, handler)
	}
	wg.Wait()
	for _, s := range slots {
		if s != nil {
			metrics.IncInvocation("ok")
			bundle.Results = append(bundle.Results, *s)
		}
	}
	return bundle
}

// addContentFragments folds the intent stage's direct prose into the
// bundle. Enumerated content (the model answering split sub-questions
// as a numbered list) is kept as separate fragments.
func addContentFragments(bundle *schema.TurnBundle, content string) {
	if content == "" {
		return
	}
	if strings.HasPrefix(content, "1") {
		for _, line := range strings.Split(content, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				bundle.Fragments = append(bundle.Fragments, schema.Fragment{Text: line})
			}
		}
		return
	}
	bundle.Fragments = append(bundle.Fragments, schema.Fragment{Text: content})
}
