// Package summarize implements the extractive summarizer behind digest
// bullets: sentence segmentation, term-frequency scoring and top-k
// selection that keeps document order.
//
// Everything here is pure. The same text and k always produce the same
// output and no call shares state with another.
package summarize

import "strings"

// Summarize returns at most k sentences of text that best represent it,
// in the order they appear. k <= 0 selects DefaultMaxSentences. Empty or
// degenerate input yields an empty, non-nil slice.
func Summarize(text string, k int) []string {
	picked := Rank(Segment(text), k)
	out := make([]string, len(picked))
	for i, s := range picked {
		out[i] = s.Text
	}
	return out
}

// Bullets truncates sentences to max entries and trims each one.
// max <= 0 selects DefaultMaxSentences.
func Bullets(sentences []string, max int) []string {
	if max <= 0 {
		max = DefaultMaxSentences
	}
	if len(sentences) > max {
		sentences = sentences[:max]
	}
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
