package search

import (
	"sort"
	"strings"

	"github.com/hyperifyio/newsdigest/internal/feed"
)

// Facets narrows an item list. Zero values disable a facet.
type Facets struct {
	Query  string
	Source string
	Theme  string
	Bucket string
	// UnreadOnly drops items present in Read.
	UnreadOnly bool
	Read       map[string]bool
}

// Filter returns the items matching every facet, in their original order.
// A nil index is built from items when a query is set. A malformed query
// is an error.
func Filter(items []feed.Item, idx *Index, f Facets) ([]feed.Item, error) {
	var hits map[string]bool
	if q := strings.TrimSpace(f.Query); q != "" {
		if idx == nil {
			built, err := NewIndex(items)
			if err != nil {
				return nil, err
			}
			defer built.Close()
			idx = built
		}
		results, err := idx.Search(q)
		if err != nil {
			return nil, err
		}
		hits = map[string]bool{}
		for _, r := range results {
			hits[r.ID] = true
		}
	}
	out := make([]feed.Item, 0, len(items))
	for _, it := range items {
		if hits != nil && !hits[it.ID] {
			continue
		}
		if f.Source != "" && it.Source != f.Source {
			continue
		}
		if f.Theme != "" && !contains(it.Themes, f.Theme) {
			continue
		}
		if f.Bucket != "" && it.Bucket != f.Bucket {
			continue
		}
		if f.UnreadOnly && f.Read[it.ID] {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

// Sources lists the distinct item sources, sorted.
func Sources(items []feed.Item) []string {
	seen := map[string]bool{}
	for _, it := range items {
		if it.Source != "" {
			seen[it.Source] = true
		}
	}
	return sortedKeys(seen)
}

// Themes lists the distinct item themes, sorted.
func Themes(items []feed.Item) []string {
	seen := map[string]bool{}
	for _, it := range items {
		for _, t := range it.Themes {
			seen[t] = true
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
