package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/medops/hospital-assistant/schema"
	"github.com/medops/hospital-assistant/tools"
)

type scriptedResolver struct {
	res   *Resolution
	err   error
	calls int32
}

func (r *scriptedResolver) Resolve(ctx context.Context, transcript []schema.ChatMessage) (*Resolution, error) {
	atomic.AddInt32(&r.calls, 1)
	return r.res, r.err
}

type scriptedSynth struct {
	out    string
	err    error
	calls  int32
	bundle *schema.TurnBundle
}

func (s *scriptedSynth) Synthesize(ctx context.Context, transcript []schema.ChatMessage, bundle *schema.TurnBundle) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	s.bundle = bundle
	return s.out, s.err
}

type stubHandler struct {
	name string
	fn   func(ctx context.Context, args string) string
}

func (h *stubHandler) Name() string { return h.name }
func (h *stubHandler) Execute(ctx context.Context, args string) string {
	return h.fn(ctx, args)
}

func TestTurnEmptyUtterance(t *testing.T) {
	o := New(&scriptedResolver{}, &scriptedSynth{}, tools.NewRegistry())
	if got := o.Turn(context.Background(), "   "); got != "" {
		t.Fatalf("expected empty reply, got %q", got)
	}
	if len(o.Transcript()) != 0 {
		t.Fatalf("blank utterance must not enter the transcript")
	}
}

func TestTurnDirectReply(t *testing.T) {
	resolver := &scriptedResolver{res: &Resolution{Content: "Hello! How can I help?"}}
	synth := &scriptedSynth{out: "should not be used"}
	o := New(resolver, synth, tools.NewRegistry())

	got := o.Turn(context.Background(), "hi")
	if got != "Hello! How can I help?" {
		t.Fatalf("unexpected reply: %q", got)
	}
	if synth.calls != 0 {
		t.Fatalf("synthesis must be skipped for a direct reply")
	}
	msgs := o.Transcript()
	if len(msgs) != 2 || msgs[0].Role != schema.RoleUser || msgs[1].Role != schema.RoleAssistant {
		t.Fatalf("transcript shape wrong: %+v", msgs)
	}
}

func TestTurnResolverFailure(t *testing.T) {
	resolver := &scriptedResolver{err: errors.New("boom")}
	o := New(resolver, &scriptedSynth{}, tools.NewRegistry())

	if got := o.Turn(context.Background(), "hi"); got != msgApology {
		t.Fatalf("expected apology, got %q", got)
	}
	// The failed turn still lands in the transcript.
	if msgs := o.Transcript(); len(msgs) != 2 || msgs[1].Content != msgApology {
		t.Fatalf("transcript wrong after failure: %+v", msgs)
	}
}

func TestTurnNothingResolved(t *testing.T) {
	resolver := &scriptedResolver{res: &Resolution{}}
	o := New(resolver, &scriptedSynth{}, tools.NewRegistry())
	if got := o.Turn(context.Background(), "???"); got != msgCouldNotUnderstand {
		t.Fatalf("expected fixed fallback, got %q", got)
	}
}

func TestTurnQueryFlowPreservesOrder(t *testing.T) {
	resolver := &scriptedResolver{res: &Resolution{Invocations: []schema.ToolInvocation{
		{Index: 1, Name: "execute_query", Arguments: `{"query":"one"}`},
		{Index: 2, Name: "execute_query", Arguments: `{"query":"two"}`},
		{Index: 3, Name: "execute_query", Arguments: `{"query":"three"}`},
	}}}
	synth := &scriptedSynth{out: "There are 3 results."}
	// The first invocation finishes last so completion order differs
	// from invocation order.
	handler := &stubHandler{name: "execute_query", fn: func(ctx context.Context, args string) string {
		if strings.Contains(args, "one") {
			time.Sleep(30 * time.Millisecond)
		}
		return args
	}}
	o := New(resolver, synth, tools.NewRegistry(handler))

	got := o.Turn(context.Background(), "how many doctors and patients and rooms?")
	if got != "There are 3 results." {
		t.Fatalf("unexpected reply: %q", got)
	}
	if synth.bundle == nil || len(synth.bundle.Results) != 3 {
		t.Fatalf("expected 3 envelopes, got %+v", synth.bundle)
	}
	for i, res := range synth.bundle.Results {
		if res.Index != i+1 {
			t.Fatalf("envelope %d out of order: index %d", i, res.Index)
		}
	}
	if !strings.Contains(synth.bundle.Results[0].Result, "one") {
		t.Fatalf("slow first invocation lost its slot: %+v", synth.bundle.Results)
	}
}

func TestTurnUnknownCapability(t *testing.T) {
	resolver := &scriptedResolver{res: &Resolution{Invocations: []schema.ToolInvocation{
		{Index: 1, Name: "send_email", Arguments: `{}`},
	}}}
	synth := &scriptedSynth{out: "final"}
	o := New(resolver, synth, tools.NewRegistry())

	o.Turn(context.Background(), "email the report")
	if synth.bundle == nil || len(synth.bundle.Fragments) != 1 {
		t.Fatalf("expected one placeholder fragment, got %+v", synth.bundle)
	}
	frag := synth.bundle.Fragments[0]
	if !frag.Placeholder || frag.Text != fmt.Sprintf(placeholderFragmentFmt, 1) {
		t.Fatalf("unexpected fragment: %+v", frag)
	}
	if !synth.bundle.OnlyPlaceholders() {
		t.Fatalf("bundle should be placeholder-only")
	}
	if len(synth.bundle.Results) != 0 {
		t.Fatalf("unknown capability must not produce an envelope")
	}
}

func TestTurnSynthesisFailure(t *testing.T) {
	resolver := &scriptedResolver{res: &Resolution{Invocations: []schema.ToolInvocation{
		{Index: 1, Name: "execute_query", Arguments: `{"query":"x"}`},
	}}}
	handler := &stubHandler{name: "execute_query", fn: func(ctx context.Context, args string) string { return "[]" }}

	o := New(resolver, &scriptedSynth{err: errors.New("down")}, tools.NewRegistry(handler))
	if got := o.Turn(context.Background(), "q"); got != msgApology {
		t.Fatalf("expected apology on synthesis failure, got %q", got)
	}

	o = New(resolver, &scriptedSynth{out: ""}, tools.NewRegistry(handler))
	if got := o.Turn(context.Background(), "q"); got != msgCouldNotUnderstand {
		t.Fatalf("expected fixed fallback on empty synthesis, got %q", got)
	}
}

func TestTurnMixedContentAndInvocations(t *testing.T) {
	resolver := &scriptedResolver{res: &Resolution{
		Content: "1. Hello!\n2. Checking the roster now.",
		Invocations: []schema.ToolInvocation{
			{Index: 1, Name: "execute_query", Arguments: `{"query":"select 1"}`},
		},
	}}
	synth := &scriptedSynth{out: "Hello! Dr. Smith is on duty."}
	handler := &stubHandler{name: "execute_query", fn: func(ctx context.Context, args string) string { return `[{"n":1}]` }}
	o := New(resolver, synth, tools.NewRegistry(handler))

	o.Turn(context.Background(), "hi, who is on duty?")
	if len(synth.bundle.Fragments) != 2 {
		t.Fatalf("enumerated content should split into fragments: %+v", synth.bundle.Fragments)
	}
	if len(synth.bundle.Results) != 1 {
		t.Fatalf("expected one envelope, got %+v", synth.bundle.Results)
	}
}

func TestTranscriptSnapshotIsolation(t *testing.T) {
	resolver := &scriptedResolver{res: &Resolution{Content: "ok"}}
	o := New(resolver, &scriptedSynth{}, tools.NewRegistry())
	o.Turn(context.Background(), "hi")

	snap := o.Transcript()
	snap[0].Content = "mutated"
	if o.Transcript()[0].Content != "hi" {
		t.Fatalf("snapshot mutation leaked into the transcript")
	}
}

func TestAddContentFragments(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"plain", "Hello there", 1},
		{"enumerated", "1. First\n2. Second\n3. Third", 3},
		{"enumerated with blanks", "1. First\n\n2. Second\n", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &schema.TurnBundle{}
			addContentFragments(b, tc.content)
			if len(b.Fragments) != tc.want {
				t.Fatalf("got %d fragments, want %d: %+v", len(b.Fragments), tc.want, b.Fragments)
			}
		})
	}
}
