package markdown_test

import (
	"strings"
	"testing"

	"fastrack/internal/platform/markdown"
)

func TestFrontmatterRoundTrip(t *testing.T) {
	t.Parallel()
	rendered, err := markdown.RenderFrontmatter(map[string]any{"id": 42, "met_goal": true}, "# Fast\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(rendered, "---\n") {
		t.Fatalf("missing separator: %q", rendered)
	}
	meta, body, err := markdown.SplitFrontmatter(rendered)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if meta["id"] != 42 || meta["met_goal"] != true {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if body != "\n# Fast\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestSplitFrontmatterWithoutHeader(t *testing.T) {
	t.Parallel()
	meta, body, err := markdown.SplitFrontmatter("plain note")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(meta) != 0 || body != "plain note" {
		t.Fatalf("unexpected split %+v %q", meta, body)
	}
	if _, _, err := markdown.SplitFrontmatter("---\nid: 1\nno closing"); err == nil {
		t.Fatalf("unterminated frontmatter must fail")
	}
}

func TestReplaceManagedBlock(t *testing.T) {
	t.Parallel()
	const start, end = "<!-- s -->", "<!-- e -->"
	fresh := markdown.ReplaceManagedBlock("", start, end, "one")
	if fresh != start+"\none\n"+end+"\n" {
		t.Fatalf("unexpected fresh block %q", fresh)
	}
	withText := markdown.ReplaceManagedBlock("intro", start, end, "one")
	if withText != "intro\n\n"+start+"\none\n"+end+"\n" {
		t.Fatalf("unexpected appended block %q", withText)
	}
	replaced := markdown.ReplaceManagedBlock(withText+"outro\n", start, end, "two")
	if !strings.Contains(replaced, start+"\ntwo\n"+end) || strings.Contains(replaced, "one") {
		t.Fatalf("block not replaced: %q", replaced)
	}
	if !strings.HasPrefix(replaced, "intro") || !strings.HasSuffix(replaced, "outro\n") {
		t.Fatalf("surrounding text lost: %q", replaced)
	}
}
