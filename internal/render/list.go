// Package render lays out item lists and digest sections as terminal text,
// Markdown, HTML and PDF.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyperifyio/newsdigest/internal/feed"
)

// NoSelection is shown when a digest is requested with nothing selected.
const NoSelection = "No highlights selected. Tick the boxes, then try again."

// View carries the per-reader state a list needs.
type View struct {
	Read     map[string]bool
	Selected map[string]bool
	// Now decides freshness and the display time zone. Zero means time.Now().
	Now time.Time
}

func (v View) now() time.Time {
	if v.Now.IsZero() {
		return time.Now()
	}
	return v.Now
}

// HighlightLine formats one item as a checkbox line with read marker, NEW
// badge for unread items published today, then meta, summary and link lines.
func HighlightLine(it feed.Item, v View) string {
	now := v.now()
	read := v.Read[it.ID]
	box := "[ ]"
	if v.Selected[it.ID] {
		box = "[x]"
	}
	marker := "*"
	if read {
		marker = " "
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s ", box, marker)
	if !read && feed.IsFresh(it.Published, now) {
		b.WriteString("NEW ")
	}
	b.WriteString(it.Title)
	b.WriteString("\n      ")
	b.WriteString(meta(it, now.Location()))
	if it.Summary != "" {
		b.WriteString("\n      ")
		b.WriteString(it.Summary)
	}
	fmt.Fprintf(&b, "\n      %s %s\n", it.ID, it.URL)
	return b.String()
}

func meta(it feed.Item, loc *time.Location) string {
	parts := []string{it.Source}
	if !it.Published.IsZero() {
		p := it.Published.In(loc)
		parts = append(parts, p.Format("15:04"), p.Format("2006-01-02"))
	}
	if len(it.Themes) > 0 {
		parts = append(parts, strings.Join(it.Themes, ", "))
	}
	return strings.Join(parts, " · ")
}

// List writes every item as a highlight line, or "No items".
func List(w io.Writer, items []feed.Item, v View) error {
	if len(items) == 0 {
		_, err := io.WriteString(w, "No items\n")
		return err
	}
	for _, it := range items {
		if _, err := io.WriteString(w, HighlightLine(it, v)); err != nil {
			return err
		}
	}
	return nil
}
