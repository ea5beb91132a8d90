// Package app wires configuration, storage and the digest pipeline into the
// operations behind the newsdigest commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/cache"
	"github.com/hyperifyio/newsdigest/internal/content"
	"github.com/hyperifyio/newsdigest/internal/digest"
	"github.com/hyperifyio/newsdigest/internal/extract"
	"github.com/hyperifyio/newsdigest/internal/feed"
	"github.com/hyperifyio/newsdigest/internal/fetch"
	"github.com/hyperifyio/newsdigest/internal/render"
	"github.com/hyperifyio/newsdigest/internal/robots"
	"github.com/hyperifyio/newsdigest/internal/search"
	"github.com/hyperifyio/newsdigest/internal/state"
	"github.com/hyperifyio/newsdigest/internal/summarize"
)

var (
	// ErrNoSelection is returned by Digest when no item is selected.
	ErrNoSelection = errors.New("no highlights selected")
	// ErrUnknownCommand is returned by Run for an unrecognized command.
	ErrUnknownCommand = errors.New("unknown command")
)

// minIDPrefix is the shortest id prefix accepted on the command line.
const minIDPrefix = 6

type App struct {
	cfg       Config
	httpCache *cache.HTTPCache
	fetcher   *fetch.Client
	source    content.Source
	sets      state.Sets
	now       func() time.Time
}

func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, now: time.Now}
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeHTTPCacheByAge(cfg.CacheDir, cfg.CacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged stale cache entries")
			}
		}
		a.httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}
	a.fetcher = newFetchClient(cfg, a.httpCache)
	a.source = newSource(cfg, a.fetcher)
	a.sets = state.Sets{KV: &state.KV{Dir: cfg.StateDir, StrictPerms: cfg.StateStrictPerms}}
	return a, nil
}

func newSource(cfg Config, client *fetch.Client) content.Source {
	worker := func() content.Source { return content.NewWorkerSource(cfg.WorkerURL, client) }
	direct := func() content.Source {
		d := &content.DirectSource{Client: client.WithContentTypes(fetch.HTMLTypes...), Extractor: extract.ReadabilityExtractor{}}
		if !cfg.IgnoreRobots {
			d.Robots = &robots.Checker{Client: client, UserAgent: cfg.UserAgent}
		}
		return d
	}
	switch cfg.ContentMode {
	case ContentWorker:
		return worker()
	case ContentDirect:
		return direct()
	case ContentChain:
		return content.Chain{worker(), direct()}
	case ContentNone:
		return content.None{}
	}
	if strings.TrimSpace(cfg.WorkerURL) != "" {
		return worker()
	}
	return content.None{}
}

func (a *App) Close() {}

// BuildOptions override the configured feed paths for one build.
type BuildOptions struct {
	FeedsPath  string
	ThemesPath string
	OutPath    string
	// TwitterOutPath defaults to twitter_posts.json beside OutPath.
	TwitterOutPath string
	Schedule       string
}

// Build fetches all feeds and writes the items file. With a schedule it
// keeps rebuilding until ctx is done.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	if opts.FeedsPath == "" {
		opts.FeedsPath = a.cfg.FeedsPath
	}
	if opts.ThemesPath == "" {
		opts.ThemesPath = a.cfg.ThemesPath
	}
	if opts.OutPath == "" {
		opts.OutPath = a.cfg.ItemsPath
	}
	if opts.TwitterOutPath == "" {
		opts.TwitterOutPath = a.cfg.TwitterPath
	}
	if opts.TwitterOutPath == "" {
		opts.TwitterOutPath = filepath.Join(filepath.Dir(opts.OutPath), "twitter_posts.json")
	}
	if opts.Schedule == "" {
		opts.Schedule = a.cfg.Schedule
	}
	if opts.Schedule != "" {
		return feed.RunScheduled(ctx, opts.Schedule, func(ctx context.Context) error {
			return a.buildOnce(ctx, opts)
		})
	}
	return a.buildOnce(ctx, opts)
}

func (a *App) buildOnce(ctx context.Context, opts BuildOptions) error {
	src, err := feed.LoadSources(opts.FeedsPath)
	if err != nil {
		return err
	}
	themes, err := feed.LoadThemes(opts.ThemesPath)
	if err != nil {
		return err
	}
	b := &feed.Builder{Client: a.fetcher, Themes: themes, Now: a.now, NitterInstances: a.cfg.NitterInstances}
	items, err := b.Build(ctx, src)
	if err != nil {
		return fmt.Errorf("build feeds: %w", err)
	}
	if err := feed.SaveItems(opts.OutPath, feed.ItemsFile{Items: items, GeneratedAt: a.now().UTC()}); err != nil {
		return fmt.Errorf("write items: %w", err)
	}
	log.Info().Int("items", len(items)).Str("path", opts.OutPath).Msg("wrote items")

	accounts, err := b.BuildTwitter(ctx, src.TwitterEmbeds)
	if err != nil {
		return fmt.Errorf("build twitter posts: %w", err)
	}
	if err := feed.SaveTwitterPosts(opts.TwitterOutPath, feed.TwitterFile{Accounts: accounts, GeneratedAt: a.now().UTC()}); err != nil {
		return fmt.Errorf("write twitter posts: %w", err)
	}
	log.Info().Int("accounts", len(accounts)).Str("path", opts.TwitterOutPath).Msg("wrote twitter posts")
	return nil
}

func (a *App) loadItems() ([]feed.Item, error) {
	f, err := feed.LoadItems(a.cfg.ItemsPath)
	if err != nil {
		return nil, err
	}
	return f.Items, nil
}

func (a *App) view() render.View {
	return render.View{
		Read:     a.sets.Load(state.KeyRead),
		Selected: a.sets.Load(state.KeySelected),
		Now:      a.now(),
	}
}

// List writes the items matching f. An empty bucket lists highlights and
// "all" lists every bucket.
func (a *App) List(w io.Writer, f search.Facets) error {
	items, err := a.loadItems()
	if err != nil {
		return err
	}
	v := a.view()
	f.Read = v.Read
	f.Bucket = listBucket(f.Bucket)
	matched, err := search.Filter(items, nil, f)
	if err != nil {
		return err
	}
	return render.List(w, matched, v)
}

func listBucket(b string) string {
	switch b {
	case "":
		return feed.BucketHighlight
	case "all":
		return ""
	}
	return b
}

// SetRead marks ids read or unread.
func (a *App) SetRead(ids []string, read bool) error {
	return a.updateSet(state.KeyRead, ids, func(s state.Set, id string) {
		if read {
			s.Add(id)
		} else {
			s.Remove(id)
		}
	})
}

// ToggleRead flips the read state of ids.
func (a *App) ToggleRead(ids []string) error {
	return a.updateSet(state.KeyRead, ids, func(s state.Set, id string) { s.Toggle(id) })
}

// SetSelected adds or removes ids from the digest selection.
func (a *App) SetSelected(ids []string, selected bool) error {
	return a.updateSet(state.KeySelected, ids, func(s state.Set, id string) {
		if selected {
			s.Add(id)
		} else {
			s.Remove(id)
		}
	})
}

func (a *App) updateSet(key string, args []string, fn func(state.Set, string)) error {
	items, err := a.loadItems()
	if err != nil {
		return err
	}
	ids, err := resolveIDs(items, args)
	if err != nil {
		return err
	}
	_, err = a.sets.Update(key, func(s state.Set) {
		for _, id := range ids {
			fn(s, id)
		}
	})
	return err
}

// MarkAllRead marks every highlight matching the query, source and theme
// facets as read and returns how many there were.
func (a *App) MarkAllRead(f search.Facets) (int, error) {
	items, err := a.loadItems()
	if err != nil {
		return 0, err
	}
	f.UnreadOnly = false
	f.Bucket = feed.BucketHighlight
	matched, err := search.Filter(items, nil, f)
	if err != nil {
		return 0, err
	}
	_, err = a.sets.Update(state.KeyRead, func(s state.Set) {
		for _, it := range matched {
			s.Add(it.ID)
		}
	})
	return len(matched), err
}

// DigestOptions control one digest run. Zero values use the configuration.
type DigestOptions struct {
	IDs         []string
	MaxBullets  int
	Concurrency int
	// Format is "md" or "html".
	Format  string
	OutPath string
	PDFPath string
}

// Digest summarizes the given ids, or the selection when none are given, in
// items file order.
func (a *App) Digest(ctx context.Context, w io.Writer, opts DigestOptions) error {
	items, err := a.loadItems()
	if err != nil {
		return err
	}
	var chosen []feed.Item
	if len(opts.IDs) > 0 {
		ids, err := resolveIDs(items, opts.IDs)
		if err != nil {
			return err
		}
		want := map[string]bool{}
		for _, id := range ids {
			want[id] = true
		}
		chosen = digest.Selected(items, want)
	} else {
		chosen = digest.Selected(items, a.sets.Load(state.KeySelected))
	}
	if len(chosen) == 0 {
		fmt.Fprintln(w, render.NoSelection)
		return ErrNoSelection
	}

	s := &digest.Summarizer{
		Source:      a.source,
		MaxBullets:  firstPositive(opts.MaxBullets, a.cfg.MaxBullets),
		Concurrency: firstPositive(opts.Concurrency, a.cfg.Concurrency),
		Timeout:     a.cfg.ItemTimeout,
	}
	log.Info().Int("items", len(chosen)).Int("concurrency", s.Concurrency).Msg("summarizing")
	sections := s.SummarizeAll(ctx, chosen)

	loc := a.now().Location()
	md := render.Markdown(sections, loc)
	out := w
	if opts.OutPath != "" {
		f, err := createFile(opts.OutPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	switch opts.Format {
	case "", "md", "markdown":
		_, err = io.WriteString(out, md)
	case "html":
		err = render.HTML(out, "News digest", sections, loc)
	default:
		return fmt.Errorf("unknown digest format %q", opts.Format)
	}
	if err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	if opts.PDFPath != "" {
		f, err := createFile(opts.PDFPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := render.PDF(f, md); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
	}
	return nil
}

// SummarizeText writes the bullets for the text read from r.
func (a *App) SummarizeText(r io.Reader, w io.Writer, max int) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read text: %w", err)
	}
	k := firstPositive(max, a.cfg.MaxBullets)
	for _, bullet := range summarize.Bullets(summarize.Summarize(string(b), k), k) {
		if _, err := fmt.Fprintf(w, "- %s\n", bullet); err != nil {
			return err
		}
	}
	return nil
}

// resolveIDs maps full ids or unique prefixes to item ids.
func resolveIDs(items []feed.Item, args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		var match []string
		for _, it := range items {
			if it.ID == arg {
				match = []string{it.ID}
				break
			}
			if len(arg) >= minIDPrefix && strings.HasPrefix(it.ID, arg) {
				match = append(match, it.ID)
			}
		}
		switch len(match) {
		case 0:
			return nil, fmt.Errorf("unknown item %q", arg)
		case 1:
			out = append(out, match[0])
		default:
			return nil, fmt.Errorf("ambiguous item prefix %q", arg)
		}
	}
	return out, nil
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}
