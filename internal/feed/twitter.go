package feed

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/extract"
	"github.com/hyperifyio/newsdigest/internal/fetch"
)

// TwitterPostsPerAccount caps the posts kept for each embedded account.
const TwitterPostsPerAccount = 5

// DefaultNitterInstances are tried in order for each account's RSS feed.
var DefaultNitterInstances = []string{
	"https://nitter.poast.org",
	"https://nitter.privacydev.net",
	"https://nitter.net",
}

// TwitterPost is one embedded post.
type TwitterPost struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Text      string    `json:"text"`
	Published time.Time `json:"published"`
}

// TwitterAccount holds the latest posts of one handle. Posts is empty,
// never null, when no instance served the feed.
type TwitterAccount struct {
	Handle string        `json:"handle"`
	URL    string        `json:"url"`
	Posts  []TwitterPost `json:"posts"`
}

// TwitterFile is the twitter_posts.json document.
type TwitterFile struct {
	Accounts    []TwitterAccount `json:"accounts"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// BuildTwitter fetches recent posts for every handle through the first
// Nitter instance that returns entries. Accounts nobody serves are kept
// with no posts.
func (b *Builder) BuildTwitter(ctx context.Context, handles []TwitterSource) ([]TwitterAccount, error) {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	feeds := b.client().WithContentTypes(fetch.FeedTypes...)
	accounts := []TwitterAccount{}
	for _, tw := range handles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		handle := strings.TrimPrefix(strings.TrimSpace(tw.Handle), "@")
		if handle == "" {
			continue
		}
		acct := TwitterAccount{Handle: handle, URL: "https://x.com/" + handle, Posts: []TwitterPost{}}
		entries := b.nitterEntries(ctx, feeds, handle)
		if len(entries) == 0 {
			log.Warn().Str("handle", handle).Msg("no twitter posts found")
		}
		if len(entries) > TwitterPostsPerAccount {
			entries = entries[:TwitterPostsPerAccount]
		}
		for _, e := range entries {
			acct.Posts = append(acct.Posts, twitterPost(e, acct.URL, now()))
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

func (b *Builder) nitterEntries(ctx context.Context, client *fetch.Client, handle string) []*gofeed.Item {
	instances := b.NitterInstances
	if len(instances) == 0 {
		instances = DefaultNitterInstances
	}
	for _, base := range instances {
		u := strings.TrimRight(base, "/") + "/" + handle + "/rss"
		entries, err := b.parse(ctx, client, u)
		if err != nil {
			log.Debug().Err(err).Str("url", u).Msg("nitter instance failed")
			continue
		}
		if len(entries) > 0 {
			return entries
		}
	}
	return nil
}

// twitterPost keeps the text after the first ": ", which drops the
// "author: " prefix Nitter puts on titles.
func twitterPost(e *gofeed.Item, profileURL string, now time.Time) TwitterPost {
	text := extract.PlainText(e.Title)
	if text == "" {
		text = extract.PlainText(e.Description)
	}
	if _, rest, ok := strings.Cut(text, ": "); ok {
		text = rest
	}
	link := strings.TrimSpace(e.Link)
	post := TwitterPost{
		ID:        postID(link, text),
		URL:       link,
		Text:      text,
		Published: published(e, now),
	}
	if post.URL == "" {
		post.URL = profileURL
	}
	return post
}

func postID(link, text string) string {
	sum := md5.Sum([]byte(link + text))
	return hex.EncodeToString(sum[:])
}

// SaveTwitterPosts writes f as indented JSON, replacing path atomically.
func SaveTwitterPosts(path string, f TwitterFile) error {
	if f.Accounts == nil {
		f.Accounts = []TwitterAccount{}
	}
	return writeJSON(path, f)
}
