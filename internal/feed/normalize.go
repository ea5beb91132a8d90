package feed

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mmcdole/gofeed"

	"github.com/hyperifyio/newsdigest/internal/extract"
)

const (
	// SummaryMaxChars bounds the stored summary, ellipsis included.
	SummaryMaxChars = 280
	wordsPerMinute  = 200
	// shortVideoSec and shortReadMinutes are the highlight thresholds.
	shortVideoSec    = 300
	shortReadMinutes = 5
)

// CountWords counts runs of letters, digits and underscores.
func CountWords(s string) int {
	n := 0
	in := false
	for _, r := range s {
		w := r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
		if w && !in {
			n++
		}
		in = w
	}
	return n
}

// ReadMinutes estimates reading time at 200 words per minute, at least one.
func ReadMinutes(text string) int {
	m := int(math.RoundToEven(float64(CountWords(text)) / wordsPerMinute))
	if m < 1 {
		return 1
	}
	return m
}

// Bucket classifies an item by video duration when known, else by read time.
func Bucket(durationSec *int, readMinutes int) string {
	if durationSec != nil {
		if *durationSec <= shortVideoSec {
			return BucketHighlight
		}
		return BucketDeeper
	}
	if readMinutes <= shortReadMinutes {
		return BucketHighlight
	}
	return BucketDeeper
}

// AssignThemes returns the sorted names of themes with a keyword that occurs
// in text, ignoring case.
func AssignThemes(text string, themes Themes) []string {
	lower := strings.ToLower(text)
	out := []string{}
	for name, keywords := range themes {
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(lower, kw) {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// NormalizeEntry maps a parsed feed entry to an Item.
func NormalizeEntry(e *gofeed.Item, label, sourceType string, themes Themes, now time.Time) Item {
	title := strings.TrimSpace(e.Title)
	link := strings.TrimSpace(e.Link)
	if link == "" && len(e.Links) > 0 {
		link = strings.TrimSpace(e.Links[0])
	}
	raw := rawSummary(e)
	summary := extract.Truncate(extract.PlainText(raw), SummaryMaxChars)
	minutes := ReadMinutes(raw)
	duration := durationSec(e)
	return Item{
		ID:          ItemID(link, title),
		Title:       title,
		URL:         link,
		Source:      label,
		SourceType:  sourceType,
		Published:   published(e, now),
		Summary:     summary,
		ReadMinutes: minutes,
		DurationSec: duration,
		Themes:      AssignThemes(title+" "+summary, themes),
		Bucket:      Bucket(duration, minutes),
	}
}

func rawSummary(e *gofeed.Item) string {
	if e.Description != "" {
		return e.Description
	}
	if e.Content != "" {
		return e.Content
	}
	media, ok := e.Extensions["media"]
	if !ok {
		return ""
	}
	for _, group := range media["group"] {
		for _, d := range group.Children["description"] {
			if d.Value != "" {
				return d.Value
			}
		}
	}
	return ""
}

// durationSec reads itunes:duration given as seconds, MM:SS or HH:MM:SS.
func durationSec(e *gofeed.Item) *int {
	if e.ITunesExt == nil || strings.TrimSpace(e.ITunesExt.Duration) == "" {
		return nil
	}
	total := 0
	for _, part := range strings.Split(strings.TrimSpace(e.ITunesExt.Duration), ":") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil
		}
		total = total*60 + n
	}
	return &total
}

func published(e *gofeed.Item, now time.Time) time.Time {
	if e.PublishedParsed != nil {
		return e.PublishedParsed.UTC()
	}
	if e.UpdatedParsed != nil {
		return e.UpdatedParsed.UTC()
	}
	return now.UTC()
}
