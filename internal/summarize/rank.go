package summarize

import "sort"

// DefaultMaxSentences is the summary length used when callers pass k <= 0.
const DefaultMaxSentences = 6

// ScoredSentence is a candidate sentence with its salience score.
type ScoredSentence struct {
	Sentence
	Score int
}

// TermFrequencies counts every non-stopword token across all sentences.
func TermFrequencies(sentences []Sentence) map[string]int {
	tf := make(map[string]int)
	for _, s := range sentences {
		for _, tok := range Tokenize(s.Text) {
			if IsStopword(tok) {
				continue
			}
			tf[tok]++
		}
	}
	return tf
}

// Score sums the global frequency of each non-stopword token occurrence in s.
func Score(s Sentence, tf map[string]int) int {
	total := 0
	for _, tok := range Tokenize(s.Text) {
		if IsStopword(tok) {
			continue
		}
		total += tf[tok]
	}
	return total
}

// ScoreAll scores every sentence against a table built over all of them.
func ScoreAll(sentences []Sentence) []ScoredSentence {
	tf := TermFrequencies(sentences)
	out := make([]ScoredSentence, len(sentences))
	for i, s := range sentences {
		out[i] = ScoredSentence{Sentence: s, Score: Score(s, tf)}
	}
	return out
}

// Rank keeps the k highest scoring sentences and returns them in their
// original order. Inputs of k sentences or fewer come back unchanged.
// Equal scores keep their relative input order.
func Rank(sentences []Sentence, k int) []Sentence {
	if k <= 0 {
		k = DefaultMaxSentences
	}
	if len(sentences) <= k {
		return sentences
	}
	scored := ScoreAll(sentences)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	top := make([]Sentence, k)
	for i := range top {
		top[i] = scored[i].Sentence
	}
	sort.Slice(top, func(i, j int) bool {
		return top[i].Ordinal < top[j].Ordinal
	})
	return top
}
