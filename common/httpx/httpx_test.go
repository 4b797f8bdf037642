package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medops/hospital-assistant/config"
)

func TestAllowlist(t *testing.T) {
	cases := []struct {
		pattern, host string
		want          bool
	}{
		{"*", "anything.example.com", true},
		{"db.example.com", "db.example.com", true},
		{"db.example.com", "DB.Example.Com", true},
		{"db.example.com", "evil.com", false},
		{"*.supabase.co", "abc.supabase.co", true},
		{"*.supabase.co", "supabase.co", true},
		{"*.supabase.co", "notsupabase.co", false},
	}
	for _, tc := range cases {
		if got := matchHost(tc.pattern, tc.host); got != tc.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tc.pattern, tc.host, got, tc.want)
		}
	}
}

func TestDoBlocksDisallowedHost(t *testing.T) {
	c := NewFromConfig(&config.HTTPClientConfig{HostAllowlist: []string{"db.example.com"}})
	req, _ := http.NewRequest(http.MethodGet, "https://evil.com/x", nil)

	_, err := c.Do(req)
	if !errors.Is(err, ErrHostNotAllowed) {
		t.Fatalf("expected ErrHostNotAllowed, got %v", err)
	}
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewFromConfig(&config.HTTPClientConfig{
		MaxConsecutiveFailures: 2,
		CircuitOpenSeconds:     60,
	})

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		resp, err := c.Do(req)
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		resp.Body.Close()
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	if _, err := c.Do(req); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitResetsOnSuccess(t *testing.T) {
	fail := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewFromConfig(&config.HTTPClientConfig{
		MaxConsecutiveFailures: 3,
		CircuitOpenSeconds:     1,
	})

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, _ := c.Do(req)
	resp.Body.Close()

	fail = false
	req, _ = http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("success after failure: %v", err)
	}
	resp.Body.Close()

	// the failure counter was reset, so two more failures stay under
	// the threshold
	fail = true
	for i := 0; i < 2; i++ {
		req, _ = http.NewRequest(http.MethodGet, srv.URL, nil)
		resp, err = c.Do(req)
		if err != nil {
			t.Fatalf("circuit opened too early: %v", err)
		}
		resp.Body.Close()
	}
}
