package querydb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/medops/hospital-assistant/common/httpx"
	"github.com/medops/hospital-assistant/config"
)

// Client reaches the relational data service through its generic
// execute-stored-procedure RPC (PostgREST shape):
//
//	POST {base}/rest/v1/rpc/{function}  body {"query": "..."}
//
// The query text is forwarded verbatim; safety rules live in the
// generation prompt, not here.
type Client struct {
	hx      *httpx.Client
	baseURL string
	apiKey  string
	fn      string
}

func NewClient(cfg config.DatabaseConfig, hcfg *config.HTTPClientConfig) *Client {
	fn := cfg.RPCFunction
	if fn == "" {
		fn = "execute_sql"
	}
	return &Client{
		hx:      httpx.NewFromConfig(hcfg),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		fn:      fn,
	}
}

// Execute runs one query and returns the decoded row mappings. A nil
// or empty body decodes to an empty row set, which is a valid outcome.
func (c *Client) Execute(ctx context.Context, query string) ([]map[string]any, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("encode rpc payload: %w", err)
	}
	url := c.baseURL + "/rest/v1/rpc/" + c.fn
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.hx.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rpc response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rpc status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if len(bytes.TrimSpace(body)) == 0 || string(bytes.TrimSpace(body)) == "null" {
		return nil, nil
	}
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode rpc rows: %w", err)
	}
	return rows, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
