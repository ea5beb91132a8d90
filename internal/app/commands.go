package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/search"
)

// Commands lists the subcommands understood by Run.
var Commands = []string{"build", "list", "read", "unread", "toggle-read", "select", "deselect", "mark-all-read", "digest", "summarize"}

// Run dispatches one subcommand. Output goes to stdout.
func (a *App) Run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: none given (want one of %s)", ErrUnknownCommand, strings.Join(Commands, ", "))
	}
	name, rest := args[0], args[1:]
	switch name {
	case "build":
		return a.runBuild(ctx, rest)
	case "list":
		return a.runList(rest, stdout)
	case "read", "unread", "toggle-read", "select", "deselect":
		return a.runSet(name, rest)
	case "mark-all-read":
		return a.runMarkAllRead(rest, stdout)
	case "digest":
		return a.runDigest(ctx, rest, stdout)
	case "summarize":
		return a.runSummarize(rest, stdout)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func (a *App) runBuild(ctx context.Context, args []string) error {
	var opts BuildOptions
	fs := newFlagSet("build")
	fs.StringVar(&opts.FeedsPath, "feeds", "", "Path to feeds.yml")
	fs.StringVar(&opts.ThemesPath, "themes", "", "Path to themes.yml")
	fs.StringVar(&opts.OutPath, "out", "", "Path to write items.json")
	fs.StringVar(&opts.TwitterOutPath, "twitter-out", "", "Path to write twitter_posts.json (default beside items.json)")
	fs.StringVar(&opts.Schedule, "schedule", "", "Cron expression for repeated builds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.Build(ctx, opts)
}

func facetFlags(fs *flag.FlagSet, f *search.Facets, withUnread bool) {
	fs.StringVar(&f.Query, "q", "", "Search query (+required -prohibited prefix* title:term)")
	fs.StringVar(&f.Source, "source", "", "Only items from this source")
	fs.StringVar(&f.Theme, "theme", "", "Only items with this theme")
	if withUnread {
		fs.BoolVar(&f.UnreadOnly, "unread", false, "Only unread items")
		fs.StringVar(&f.Bucket, "bucket", "", "Bucket to list: highlight (default), deeper or all")
	}
}

func (a *App) runList(args []string, stdout io.Writer) error {
	var f search.Facets
	fs := newFlagSet("list")
	facetFlags(fs, &f, true)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.List(stdout, f)
}

func (a *App) runSet(name string, args []string) error {
	fs := newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids := splitIDs(fs.Args())
	if len(ids) == 0 {
		return fmt.Errorf("%s: no item ids given", name)
	}
	switch name {
	case "read":
		return a.SetRead(ids, true)
	case "unread":
		return a.SetRead(ids, false)
	case "toggle-read":
		return a.ToggleRead(ids)
	case "select":
		return a.SetSelected(ids, true)
	default:
		return a.SetSelected(ids, false)
	}
}

func (a *App) runMarkAllRead(args []string, stdout io.Writer) error {
	var f search.Facets
	fs := newFlagSet("mark-all-read")
	facetFlags(fs, &f, false)
	if err := fs.Parse(args); err != nil {
		return err
	}
	n, err := a.MarkAllRead(f)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "marked %d items read\n", n)
	return nil
}

func (a *App) runDigest(ctx context.Context, args []string, stdout io.Writer) error {
	var opts DigestOptions
	var ids string
	fs := newFlagSet("digest")
	fs.StringVar(&ids, "ids", "", "Comma-separated item ids; defaults to the selection")
	fs.IntVar(&opts.MaxBullets, "max", 0, "Maximum bullets per item")
	fs.IntVar(&opts.Concurrency, "concurrency", 0, "Items summarized at once")
	fs.StringVar(&opts.Format, "format", "md", "Output format: md or html")
	fs.StringVar(&opts.OutPath, "out", "", "Write the digest to this file instead of stdout")
	fs.StringVar(&opts.PDFPath, "pdf", "", "Also write a PDF to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts.IDs = splitIDs(append([]string{ids}, fs.Args()...))
	err := a.Digest(ctx, stdout, opts)
	if err == nil && opts.OutPath != "" {
		log.Info().Str("path", opts.OutPath).Msg("wrote digest")
	}
	return err
}

func (a *App) runSummarize(args []string, stdout io.Writer) error {
	var max int
	fs := newFlagSet("summarize")
	fs.IntVar(&max, "max", 0, "Maximum bullets")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var in io.Reader = os.Stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	return a.SummarizeText(in, stdout, max)
}

func splitIDs(args []string) []string {
	var out []string
	for _, a := range args {
		for _, p := range strings.Split(a, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
