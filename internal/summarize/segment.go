package summarize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MinSentenceChars is the trimmed rune length a fragment must exceed to
	// become a candidate sentence.
	MinSentenceChars = 20
	// MaxCandidates bounds how many sentences a single call considers.
	MaxCandidates = 60
)

// Sentence is a candidate sentence and its position in the segmented text.
type Sentence struct {
	Text    string
	Ordinal int
}

// Segment splits text into candidate sentences.
//
// Whitespace runs collapse to a single space, then the text breaks after
// '.', '?' or '!' followed by a space when the next character is an ASCII
// capital, a digit, a quote or an opening parenthesis. Fragments of
// MinSentenceChars runes or fewer are dropped and at most MaxCandidates
// sentences are kept. This is a heuristic: "Dr. Smith" splits, "e.g. this"
// does not.
func Segment(text string) []Sentence {
	norm := collapseWhitespace(text)
	if norm == "" {
		return []Sentence{}
	}
	out := make([]Sentence, 0, 16)
	for _, frag := range splitFragments(norm) {
		frag = strings.TrimSpace(frag)
		if utf8.RuneCountInString(frag) <= MinSentenceChars {
			continue
		}
		out = append(out, Sentence{Text: frag, Ordinal: len(out)})
		if len(out) >= MaxCandidates {
			break
		}
	}
	return out
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\ufeff' {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		b.WriteRune(r)
		inSpace = false
	}
	return b.String()
}

// splitFragments expects whitespace already collapsed to single spaces.
func splitFragments(s string) []string {
	var parts []string
	start := 0
	for i := 1; i+1 < len(s); i++ {
		if s[i] != ' ' || !isTerminal(s[i-1]) || !opensSentence(s[i+1]) {
			continue
		}
		parts = append(parts, s[start:i])
		start = i + 1
	}
	return append(parts, s[start:])
}

func isTerminal(c byte) bool {
	return c == '.' || c == '?' || c == '!'
}

func opensSentence(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return c == '"' || c == '\'' || c == '('
}
