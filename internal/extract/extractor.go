package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	readability "codeberg.org/readeck/go-readability/v2"
)

// Extractor converts raw HTML into a Document.
type Extractor interface {
	Extract(input []byte) Document
}

// HeuristicExtractor wraps FromHTML.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(input []byte) Document {
	return FromHTML(input)
}

// minReadableChars is how much text readability must produce before its
// result is preferred over the heuristic walk.
const minReadableChars = 200

// ReadabilityExtractor runs go-readability and lays out its cleaned HTML
// with FromHTML. Pages where readability finds too little text fall back to
// the heuristic extractor on the original input.
type ReadabilityExtractor struct {
	Fallback Extractor
}

func (r ReadabilityExtractor) Extract(input []byte) Document {
	fallback := r.Fallback
	if fallback == nil {
		fallback = HeuristicExtractor{}
	}
	base := fallback.Extract(input)

	article, err := readability.FromReader(bytes.NewReader(input), nil)
	if err != nil {
		return base
	}
	var buf strings.Builder
	if err := article.RenderHTML(&buf); err != nil {
		return base
	}
	doc := FromHTML([]byte("<html><body>" + buf.String() + "</body></html>"))
	if utf8.RuneCountInString(doc.Text) < minReadableChars {
		return base
	}
	doc.Title = base.Title
	return doc
}
