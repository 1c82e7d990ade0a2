package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	separator = "---\n"
	closing   = "\n---\n"
)

// SplitFrontmatter separates a leading YAML block from the note body. Notes
// without frontmatter come back with empty metadata.
func SplitFrontmatter(content string) (map[string]any, string, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, separator) {
		return map[string]any{}, content, nil
	}
	rest := content[len(separator):]
	idx := strings.Index(rest, closing)
	if idx < 0 {
		return nil, "", fmt.Errorf("invalid frontmatter: missing closing separator")
	}
	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return nil, "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return meta, rest[idx+len(closing):], nil
}

func RenderFrontmatter(meta map[string]any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(separator)
	buf.Write(raw)
	buf.WriteString(separator)
	if !strings.HasPrefix(body, "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteString(body)
	return buf.String(), nil
}
