package content

import (
	"context"
	"strings"

	"github.com/hyperifyio/newsdigest/internal/extract"
	"github.com/hyperifyio/newsdigest/internal/fetch"
)

// DirectSource fetches the page itself and extracts the article text.
// Video transcripts need the worker, so YouTube URLs are unavailable here.
type DirectSource struct {
	Client    *fetch.Client
	Extractor extract.Extractor
	// Robots, when set, vetoes pages the site disallows.
	Robots Gate
}

// Gate decides whether a page may be fetched.
type Gate interface {
	Allowed(ctx context.Context, rawURL string) bool
}

func (d *DirectSource) Text(ctx context.Context, rawURL string) (string, error) {
	if IsYouTube(rawURL) {
		return "", unavailable("no transcript access for %s", rawURL)
	}
	if d.Robots != nil && !d.Robots.Allowed(ctx, rawURL) {
		return "", unavailable("%s disallowed by robots.txt", rawURL)
	}
	client := d.Client
	if client == nil {
		client = &fetch.Client{}
	}
	body, _, err := client.Get(ctx, rawURL)
	if err != nil {
		return "", unavailable("fetch %s: %v", rawURL, err)
	}
	ex := d.Extractor
	if ex == nil {
		ex = extract.ReadabilityExtractor{}
	}
	doc := ex.Extract(body)
	if strings.TrimSpace(doc.Text) == "" {
		return "", unavailable("no article text in %s", rawURL)
	}
	return doc.Text, nil
}
