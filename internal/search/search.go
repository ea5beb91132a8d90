// Package search indexes items by title and summary and answers the
// free-text and facet queries of the item list.
//
// Queries use the bleve query-string syntax: +required, -prohibited,
// prefix* and field:term with the fields title and summary. Text is
// analyzed with the English analyzer, so "generics" also finds "generic".
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/hyperifyio/newsdigest/internal/feed"
)

// Field names accepted as query qualifiers.
const (
	FieldTitle   = "title"
	FieldSummary = "summary"
)

// Result is one matching item.
type Result struct {
	ID    string
	Score float64
}

// Index is an in-memory bleve index over item titles and summaries. It is
// read-only after NewIndex and safe for concurrent Search calls.
type Index struct {
	index bleve.Index
	order map[string]int
}

func newMapping() *mapping.IndexMappingImpl {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = en.AnalyzerName
	text.Store = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(FieldTitle, text)
	doc.AddFieldMappingsAt(FieldSummary, text)

	m := bleve.NewIndexMapping()
	m.DefaultAnalyzer = en.AnalyzerName
	m.DefaultMapping = doc
	return m
}

// NewIndex indexes items. Ties in Search keep items order.
func NewIndex(items []feed.Item) (*Index, error) {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	order := make(map[string]int, len(items))
	batch := idx.NewBatch()
	for i, it := range items {
		if _, dup := order[it.ID]; dup {
			continue
		}
		order[it.ID] = i
		err := batch.Index(it.ID, map[string]interface{}{
			FieldTitle:   it.Title,
			FieldSummary: it.Summary,
		})
		if err != nil {
			idx.Close()
			return nil, fmt.Errorf("index item %s: %w", it.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, fmt.Errorf("index items: %w", err)
	}
	return &Index{index: idx, order: order}, nil
}

// Close releases the index.
func (x *Index) Close() error {
	return x.index.Close()
}

// Search returns the items matching query, best first. A blank query
// matches nothing.
func (x *Index) Search(query string) ([]Result, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(x.order) == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), len(x.order), 0, false)
	res, err := x.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	out := make([]Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		out = append(out, Result{ID: h.ID, Score: h.Score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return x.order[out[i].ID] < x.order[out[j].ID]
	})
	return out, nil
}
