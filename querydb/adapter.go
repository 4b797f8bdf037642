package querydb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/medops/hospital-assistant/common/logger"
	"github.com/medops/hospital-assistant/common/retry"
	"github.com/medops/hospital-assistant/config"
	"github.com/medops/hospital-assistant/metrics"
)

// ToolName is the single query capability declared to the generation
// service.
const ToolName = "execute_query"

// Adapter turns raw tool-invocation arguments into an executed query
// and a canonical JSON result text. It never returns a Go error:
// decode failures and exhausted remote retries both fold into the same
// {"error": "..."} envelope so downstream stages can render a user-safe
// message.
type Adapter struct {
	db      *Client
	retries int
	delay   time.Duration
}

func NewAdapter(db *Client, rcfg config.RetryConfig) *Adapter {
	return &Adapter{
		db:      db,
		retries: rcfg.MaxRetries,
		delay:   time.Duration(rcfg.DelayMs) * time.Millisecond,
	}
}

func (a *Adapter) Name() string { return ToolName }

// Execute decodes {query: string} from rawArgs, runs the query with
// bounded retry and serializes the outcome. Empty row sets are valid
// and serialize to an empty array, not an error.
func (a *Adapter) Execute(ctx context.Context, rawArgs string) string {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		logger.Errorf("query arguments decode failed: %v", err)
		metrics.IncQueryOutcome("error")
		return errorEnvelope(err)
	}
	logger.Infof("executing query: %s", args.Query)

	rows, err := retry.Do(ctx, "query_execution", a.retries, a.delay, func(ctx context.Context) ([]map[string]any, error) {
		return a.db.Execute(ctx, args.Query)
	})
	if err != nil {
		logger.Errorf("query execution failed after retries: %v", err)
		metrics.IncQueryOutcome("error")
		return errorEnvelope(err)
	}
	if len(rows) == 0 {
		logger.Warnf("query returned empty results")
		metrics.IncQueryOutcome("empty")
		return "[]"
	}
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		metrics.IncQueryOutcome("error")
		return errorEnvelope(err)
	}
	metrics.IncQueryOutcome("rows")
	return string(out)
}

func errorEnvelope(err error) string {
	b, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		return `{"error": "query failed"}`
	}
	return string(b)
}
