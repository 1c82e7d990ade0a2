package slug_test

import (
	"testing"

	"fastrack/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"16:8 (Lean Gains)":   "16-8-lean-gains",
		"Custom Test (1 min)": "custom-test-1-min",
		"  ":                  "fast",
		"!!":                  "fast",
	}
	for in, want := range cases {
		if got := slug.Make(in, "fast"); got != want {
			t.Fatalf("slug.Make(%q) = %q, want %q", in, got, want)
		}
	}
}
