package llm

import (
	"regexp"
	"strings"
)

var (
	fenceRegex         = regexp.MustCompile("(?i)```json|```")
	trailingCommaRegex = regexp.MustCompile(`,\s*([\]}])`)
	quoteReplacer      = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")
)

// Sanitize turns a model completion into text that is likely to parse as a
// JSON array. It strips code fences, keeps the outermost [...] span when
// there is one, normalizes typographic quotes and drops trailing commas.
// It never parses; a reply without brackets is returned for the parser to
// reject.
func Sanitize(text string) string {
	t := strings.TrimSpace(text)
	t = strings.TrimSpace(fenceRegex.ReplaceAllString(t, ""))

	first := strings.Index(t, "[")
	last := strings.LastIndex(t, "]")
	if first != -1 && last != -1 && last > first {
		t = t[first : last+1]
	}

	t = quoteReplacer.Replace(t)
	t = trailingCommaRegex.ReplaceAllString(t, "$1")

	return strings.TrimSpace(t)
}
