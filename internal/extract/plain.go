package extract

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

var strict = bluemonday.StrictPolicy()

// PlainText strips every tag from an HTML fragment (feed descriptions,
// titles), decodes entities and collapses whitespace to single spaces.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	// Keep words in adjacent elements apart once the tags are gone.
	spaced := strings.NewReplacer("<", " <", ">", "> ").Replace(fragment)
	text := html.UnescapeString(strict.Sanitize(spaced))
	return norm.NFC.String(strings.Join(strings.Fields(text), " "))
}

// Truncate shortens s to at most max runes, ending with an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
