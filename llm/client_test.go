package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v2"

	"github.com/medops/hospital-assistant/config"
	"github.com/medops/hospital-assistant/schema"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.LLMConfig{
		APIKey:      "test",
		BaseURL:     srv.URL,
		Model:       "test-model",
		Temperature: 0.7,
		MaxTokens:   256,
	}, config.RetryConfig{MaxRetries: 0, DelayMs: 1})
}

func TestCompleteMapsToolCalls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "test-model" {
			t.Errorf("model not forwarded: %v", req["model"])
		}
		if _, ok := req["tools"]; !ok {
			t.Errorf("tool declarations missing from request")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"role":    "assistant",
					"content": "",
					"tool_calls": []map[string]any{
						{
							"id":   "call_abc",
							"type": "function",
							"function": map[string]any{
								"name":      "execute_query",
								"arguments": `{"query":"SELECT count(*) FROM doctors"}`,
							},
						},
						{
							"id":   "call_def",
							"type": "function",
							"function": map[string]any{
								"name":      "execute_query",
								"arguments": `{"query":"SELECT count(*) FROM patients"}`,
							},
						},
					},
				},
			}},
		})
	})

	tools := []openai.ChatCompletionToolUnionParam{
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{Name: "execute_query"}),
	}
	comp, err := c.Complete(context.Background(), "intent_resolution",
		ToParams([]schema.ChatMessage{{Role: schema.RoleUser, Content: "counts?"}}), tools)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(comp.Invocations) != 2 {
		t.Fatalf("expected 2 invocations, got %d", len(comp.Invocations))
	}
	if comp.Invocations[0].Index != 1 || comp.Invocations[1].Index != 2 {
		t.Fatalf("invocation indexes must be 1-based and ordered: %+v", comp.Invocations)
	}
	if comp.Invocations[0].Name != "execute_query" || comp.Invocations[0].ID != "call_abc" {
		t.Fatalf("invocation fields wrong: %+v", comp.Invocations[0])
	}
}

func TestCompleteContentOnly(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"role": "assistant", "content": "Hello!"},
			}},
		})
	})

	comp, err := c.Complete(context.Background(), "intent_resolution",
		ToParams([]schema.ChatMessage{{Role: schema.RoleUser, Content: "hi"}}), nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if comp.Content != "Hello!" || len(comp.Invocations) != 0 {
		t.Fatalf("unexpected completion: %+v", comp)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	if _, err := c.Complete(context.Background(), "t", nil, nil); err == nil {
		t.Fatalf("expected error on empty choices")
	}
}
