// Package digest builds per-item summary sections. Each item's text comes
// from the content source when available, otherwise from the item's own
// summary or title, and is reduced to a few extractive bullets.
package digest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/newsdigest/internal/content"
	"github.com/hyperifyio/newsdigest/internal/feed"
	"github.com/hyperifyio/newsdigest/internal/summarize"
)

// Origin names where a section's text came from.
type Origin string

const (
	OriginFetched Origin = "fetched"
	OriginSummary Origin = "summary"
	OriginTitle   Origin = "title"
	OriginEmpty   Origin = "empty"
)

// Section is one digest entry.
type Section struct {
	Item    feed.Item
	Bullets []string
	Origin  Origin
}

// Summarizer produces sections. A nil Source behaves like content.None.
type Summarizer struct {
	Source content.Source
	// MaxBullets caps bullets per section; <= 0 means summarize.DefaultMaxSentences.
	MaxBullets int
	// Concurrency above 1 summarizes that many items at once.
	Concurrency int
	// Timeout bounds each item's Source call. A source that runs over it
	// falls back like a failed one.
	Timeout time.Duration
}

// Summarize builds the section for one item. Source failures fall back to
// the item's summary, then its title.
func (s *Summarizer) Summarize(ctx context.Context, it feed.Item) Section {
	text, origin := s.acquire(ctx, it)
	return s.section(it, text, origin)
}

// SummarizeAll returns one section per item in input order. Once ctx is
// done the remaining items are summarized from their fallback text only.
func (s *Summarizer) SummarizeAll(ctx context.Context, items []feed.Item) []Section {
	out := make([]Section, len(items))
	if s.Concurrency <= 1 {
		for i, it := range items {
			out[i] = s.Summarize(ctx, it)
		}
		return out
	}
	var g errgroup.Group
	g.SetLimit(s.Concurrency)
	for i, it := range items {
		if ctx.Err() != nil {
			text, origin := fallback(it)
			out[i] = s.section(it, text, origin)
			continue
		}
		g.Go(func() error {
			out[i] = s.Summarize(ctx, it)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Summarizer) section(it feed.Item, text string, origin Origin) Section {
	k := s.MaxBullets
	if k <= 0 {
		k = summarize.DefaultMaxSentences
	}
	return Section{
		Item:    it,
		Bullets: summarize.Bullets(summarize.Summarize(text, k), k),
		Origin:  origin,
	}
}

func (s *Summarizer) acquire(ctx context.Context, it feed.Item) (string, Origin) {
	if s.Source != nil && it.URL != "" && ctx.Err() == nil {
		if s.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.Timeout)
			defer cancel()
		}
		text, err := s.Source.Text(ctx, it.URL)
		switch {
		case err == nil && strings.TrimSpace(text) != "":
			return text, OriginFetched
		case err != nil && !errors.Is(err, content.ErrUnavailable):
			log.Warn().Err(err).Str("url", it.URL).Msg("content source failed")
		case err != nil:
			log.Debug().Err(err).Str("url", it.URL).Msg("no full text")
		}
	}
	return fallback(it)
}

func fallback(it feed.Item) (string, Origin) {
	if strings.TrimSpace(it.Summary) != "" {
		return it.Summary, OriginSummary
	}
	if strings.TrimSpace(it.Title) != "" {
		return it.Title, OriginTitle
	}
	return "", OriginEmpty
}

// Selected returns the items whose ids are in ids, in items order.
func Selected(items []feed.Item, ids map[string]bool) []feed.Item {
	var out []feed.Item
	for _, it := range items {
		if ids[it.ID] {
			out = append(out, it)
		}
	}
	return out
}
