package memory

import (
	"regexp"
	"strings"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Normalize turns an extracted name into a graph key: trimmed, lower-cased,
// internal whitespace collapsed to a single underscore.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return whitespacePattern.ReplaceAllString(name, "_")
}
