package slug

import (
	"regexp"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases input and collapses everything else into single dashes,
// returning fallback when nothing usable is left.
func Make(input, fallback string) string {
	s := nonAlphaNum.ReplaceAllString(strings.ToLower(strings.TrimSpace(input)), "-")
	if s = strings.Trim(s, "-"); s != "" {
		return s
	}
	return fallback
}
