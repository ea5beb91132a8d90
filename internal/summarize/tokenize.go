package summarize

import "strings"

// Tokenize lowercases s and returns its maximal runs of ASCII letters,
// digits and apostrophes. Stopwords are kept; callers that score tokens
// skip them with IsStopword.
func Tokenize(s string) []string {
	lower := strings.ToLower(s)
	var tokens []string
	start := -1
	for i := 0; i < len(lower); i++ {
		if isTokenByte(lower[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, lower[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, lower[start:])
	}
	return tokens
}

func isTokenByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '\''
}
