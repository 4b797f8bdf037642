package schema

import "time"

// Chat roles as they appear in the transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// ChatMessage represents a single chat turn.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolInvocation is a structured request, emitted by the generation
// service, to run a named capability with raw JSON arguments.
// Index is 1-based and reflects the order within the turn.
type ToolInvocation struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// QueryResult is the canonical envelope for one executed invocation.
// Result holds serialized JSON: either a rows array or {"error": "..."}.
// Immutable once produced.
type QueryResult struct {
	Index  int    `json:"index"`
	Result string `json:"result"`
}

// Fragment is a piece of direct assistant text accumulated for a turn.
// Placeholder marks the fixed "couldn't process" filler emitted for
// unrecognized tool names.
type Fragment struct {
	Text        string
	Placeholder bool
}

// TurnBundle collects everything produced for one user utterance before
// response synthesis runs. Created per turn, discarded afterwards.
type TurnBundle struct {
	Fragments []Fragment
	Results   []QueryResult
}

// Empty reports whether the bundle carries nothing at all.
func (b *TurnBundle) Empty() bool {
	return len(b.Fragments) == 0 && len(b.Results) == 0
}

// OnlyPlaceholders reports whether every fragment is placeholder filler.
// Such fragments are suppressed from synthesis input so the model is not
// fed pure failure noise.
func (b *TurnBundle) OnlyPlaceholders() bool {
	if len(b.Fragments) == 0 {
		return false
	}
	for _, f := range b.Fragments {
		if !f.Placeholder {
			return false
		}
	}
	return true
}

// FragmentText joins non-empty fragment texts for synthesis input.
func (b *TurnBundle) FragmentText() string {
	out := ""
	for _, f := range b.Fragments {
		if f.Text == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += f.Text
	}
	return out
}
