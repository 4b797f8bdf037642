package speech

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Dr. Smith is on duty.", "Dr. Smith is on duty."},
		{"markdown stripped", "**Urgent:** room _3_ is #free", "Urgent room 3 is free"},
		{"emoji dropped", "All good \U0001F44D here", "All good  here"},
		{"punctuation kept", "Really? Yes, really - all done!", "Really? Yes, really - all done!"},
		{"disallowed symbols dropped", "a@b;c:d(e)f", "abcdef"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeTruncates(t *testing.T) {
	got := Sanitize(strings.Repeat("a", 2000))
	if len(got) != maxSpeechChars+3 {
		t.Fatalf("length %d, want %d", len(got), maxSpeechChars+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated text must end with an ellipsis marker")
	}
}

func TestSanitizeCanEmptyOut(t *testing.T) {
	if got := Sanitize("éèê"); got != "" {
		t.Fatalf("non-ASCII only input should sanitize to empty, got %q", got)
	}
}
