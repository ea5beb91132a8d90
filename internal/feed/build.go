package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/fetch"
)

// DefaultYouTubeBase is where channel handles and feeds are resolved.
const DefaultYouTubeBase = "https://www.youtube.com"

var channelIDPattern = regexp.MustCompile(`"channelId":"(UC[0-9A-Za-z_-]{22})"`)

// Builder turns configured sources into normalized items.
type Builder struct {
	// Client fetches feeds and channel pages. Its content types are
	// overridden per request kind.
	Client *fetch.Client
	Themes Themes
	// YouTubeBase overrides DefaultYouTubeBase.
	YouTubeBase string
	// Now overrides time.Now for entries without dates.
	Now func() time.Time
	// NitterInstances overrides DefaultNitterInstances.
	NitterInstances []string
}

type feedRef struct {
	label      string
	url        string
	sourceType string
}

// Build fetches every source and returns deduplicated items, newest first.
// A source that fails is logged and skipped.
func (b *Builder) Build(ctx context.Context, src Sources) ([]Item, error) {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	refs := b.resolve(ctx, src)
	feeds := b.client().WithContentTypes(append(append([]string{}, fetch.FeedTypes...), fetch.HTMLTypes...)...)

	var items []Item
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := b.parse(ctx, feeds, ref.url)
		if err != nil {
			log.Warn().Err(err).Str("source", ref.label).Str("url", ref.url).Msg("feed failed")
			continue
		}
		for _, e := range entries {
			items = append(items, NormalizeEntry(e, ref.label, ref.sourceType, b.Themes, now()))
		}
		log.Debug().Str("source", ref.label).Int("entries", len(entries)).Msg("feed parsed")
	}
	items = Dedupe(items)
	SortNewestFirst(items)
	return items, nil
}

// SortNewestFirst orders items by published time, newest first, keeping
// the relative order of equal times.
func SortNewestFirst(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
}

func (b *Builder) client() *fetch.Client {
	if b.Client == nil {
		return &fetch.Client{}
	}
	return b.Client
}

func (b *Builder) base() string {
	if b.YouTubeBase != "" {
		return strings.TrimRight(b.YouTubeBase, "/")
	}
	return DefaultYouTubeBase
}

func (b *Builder) resolve(ctx context.Context, src Sources) []feedRef {
	var refs []feedRef
	for _, yt := range src.YouTube {
		id := strings.TrimSpace(yt.ChannelID)
		if id == "" && yt.Handle != "" {
			var err error
			id, err = b.ResolveHandle(ctx, yt.Handle)
			if err != nil {
				log.Warn().Err(err).Str("handle", yt.Handle).Msg("could not resolve channel")
				continue
			}
		}
		if id == "" {
			log.Warn().Str("label", yt.Label).Msg("youtube source without channel_id or handle")
			continue
		}
		refs = append(refs, feedRef{
			label:      yt.DisplayLabel(),
			url:        b.base() + "/feeds/videos.xml?channel_id=" + url.QueryEscape(id),
			sourceType: SourceYouTube,
		})
	}
	lists := []struct {
		sources []FeedSource
		label   string
	}{
		{src.RSS, DefaultRSSLabel},
		{src.Websites, DefaultWebsiteLabel},
	}
	for _, list := range lists {
		for _, f := range list.sources {
			if strings.TrimSpace(f.FeedURL) == "" {
				continue
			}
			label := strings.TrimSpace(f.Label)
			if label == "" {
				label = list.label
			}
			refs = append(refs, feedRef{label: label, url: strings.TrimSpace(f.FeedURL), sourceType: SourceRSS})
		}
	}
	return refs
}

// ResolveHandle finds the channel id for an @handle from its about page.
func (b *Builder) ResolveHandle(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	page := b.base() + "/@" + url.PathEscape(handle) + "/about"
	body, _, err := b.client().WithContentTypes(fetch.HTMLTypes...).Get(ctx, page)
	if err != nil {
		return "", fmt.Errorf("fetch channel page: %w", err)
	}
	m := channelIDPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("no channel id on %s", page)
	}
	return string(m[1]), nil
}

func (b *Builder) parse(ctx context.Context, client *fetch.Client, feedURL string) ([]*gofeed.Item, error) {
	body, _, err := client.Get(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return parsed.Items, nil
}
