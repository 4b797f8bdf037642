package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/medops/hospital-assistant/common/logger"
	"github.com/medops/hospital-assistant/schema"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// tokenCount estimates tokens for one message. The transcript store is
// unbounded; only the snapshot handed to the model is windowed, so a
// rough count is enough. Falls back to a bytes/4 heuristic when the
// encoding cannot be loaded (offline hosts).
func tokenCount(s string) int {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Warnf("token encoding unavailable, using length estimate: %v", err)
			return
		}
		enc = e
	})
	if enc != nil {
		return len(enc.Encode(s, nil, nil))
	}
	return len(s)/4 + 1
}

// Window trims a transcript snapshot to a token budget, dropping the
// oldest turns first. The most recent message is always kept, whatever
// its size. A budget of zero or less disables windowing.
func Window(msgs []schema.ChatMessage, budget int) []schema.ChatMessage {
	if budget <= 0 || len(msgs) == 0 {
		return msgs
	}
	total := 0
	start := len(msgs)
	for i := len(msgs) - 1; i >= 0; i-- {
		total += tokenCount(msgs[i].Content)
		if total > budget && start < len(msgs) {
			break
		}
		start = i
	}
	if start > 0 {
		logger.Debugf("transcript window: dropped %d of %d messages", start, len(msgs))
	}
	return msgs[start:]
}
