package search

import (
	"reflect"
	"testing"

	"github.com/hyperifyio/newsdigest/internal/feed"
)

var corpus = []feed.Item{
	{ID: "a", Title: "Rust compiler release", Summary: "The Rust team shipped faster builds.", Source: "Blog", Themes: []string{"dev"}, Bucket: feed.BucketHighlight},
	{ID: "b", Title: "Go generics in practice", Summary: "Generic code and the rust comparison.", Source: "Video", Themes: []string{"dev", "go"}, Bucket: feed.BucketDeeper},
	{ID: "c", Title: "Market wrap", Summary: "Stocks rallied on earnings.", Source: "Blog", Themes: []string{"markets"}, Bucket: feed.BucketHighlight},
}

func ids(rs []Result) []string {
	out := []string{}
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func newIndex(t *testing.T, items []feed.Item) *Index {
	t.Helper()
	idx, err := NewIndex(items)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func search(t *testing.T, idx *Index, q string) []string {
	t.Helper()
	rs, err := idx.Search(q)
	if err != nil {
		t.Fatalf("search %q: %v", q, err)
	}
	return ids(rs)
}

func filter(t *testing.T, idx *Index, f Facets) []feed.Item {
	t.Helper()
	got, err := Filter(corpus, idx, f)
	if err != nil {
		t.Fatalf("filter %+v: %v", f, err)
	}
	return got
}

func TestSearch_OptionalTermsRankByHits(t *testing.T) {
	idx := newIndex(t, corpus)
	if got := search(t, idx, "rust"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected results %v", got)
	}
	if got := search(t, idx, "nothing"); len(got) != 0 {
		t.Fatalf("expected no results, got %v", got)
	}
	if got := search(t, idx, "  "); len(got) != 0 {
		t.Fatalf("blank query should match nothing, got %v", got)
	}
}

func TestSearch_PresenceOperators(t *testing.T) {
	idx := newIndex(t, corpus)
	if got := search(t, idx, "rust -generics"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("prohibited term not applied: %v", got)
	}
	if got := search(t, idx, "+go rust"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("required term not applied: %v", got)
	}
	if got := search(t, idx, "+market stocks"); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("required with optional: %v", got)
	}
	if got := search(t, idx, "-rust"); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("prohibited-only query: %v", got)
	}
}

func TestSearch_PrefixFieldStemmingAndStopwords(t *testing.T) {
	idx := newIndex(t, corpus)
	if got := search(t, idx, "gen*"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("prefix search: %v", got)
	}
	if got := search(t, idx, "Title:Rust"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("field search: %v", got)
	}
	if got := search(t, idx, "generic"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("stemmed search: %v", got)
	}
	if got := search(t, idx, "the and of"); len(got) != 0 {
		t.Fatalf("stopword-only query should match nothing, got %v", got)
	}
	if got := search(t, idx, "the stocks"); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("stopwords should be ignored: %v", got)
	}
}

func TestFilter(t *testing.T) {
	if got := filter(t, nil, Facets{Source: "Blog"}); len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("source facet: %+v", got)
	}
	if got := filter(t, nil, Facets{Theme: "dev", UnreadOnly: true, Read: map[string]bool{"a": true}}); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("theme+unread facets: %+v", got)
	}
	if got := filter(t, newIndex(t, corpus), Facets{Query: "rust", Bucket: feed.BucketHighlight}); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("query+bucket facets: %+v", got)
	}
	// Filter keeps item order even when search ranks differently.
	if got := filter(t, nil, Facets{Query: "generic* rust"}); len(got) != 2 || got[0].ID != "a" {
		t.Fatalf("order not preserved: %+v", got)
	}
	if got := filter(t, nil, Facets{}); len(got) != len(corpus) {
		t.Fatalf("no facets should keep everything")
	}
}

func TestFacetValues(t *testing.T) {
	if got := Sources(corpus); !reflect.DeepEqual(got, []string{"Blog", "Video"}) {
		t.Fatalf("sources: %v", got)
	}
	if got := Themes(corpus); !reflect.DeepEqual(got, []string{"dev", "go", "markets"}) {
		t.Fatalf("themes: %v", got)
	}
}
