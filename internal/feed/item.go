// Package feed owns the item model behind items.json and the builder that
// produces it from RSS, Atom and YouTube channel feeds.
package feed

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Bucket values.
const (
	BucketHighlight = "highlight"
	BucketDeeper    = "deeper"
)

// Source types.
const (
	SourceYouTube = "youtube"
	SourceRSS     = "rss"
)

// Item is one normalized feed entry.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	SourceType  string    `json:"source_type"`
	Published   time.Time `json:"published"`
	Summary     string    `json:"summary"`
	ReadMinutes int       `json:"read_minutes"`
	DurationSec *int      `json:"duration_sec"`
	Themes      []string  `json:"themes"`
	Bucket      string    `json:"bucket"`
}

// ItemsFile is the on-disk shape of items.json.
type ItemsFile struct {
	Items       []Item    `json:"items"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ItemID derives the stable identifier for an entry from its link, or from
// its title when the link is empty.
func ItemID(link, title string) string {
	key := link
	if key == "" {
		key = title
	}
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// IsFresh reports whether published falls on the same local calendar day as now.
func IsFresh(published, now time.Time) bool {
	if published.IsZero() {
		return false
	}
	p := published.In(now.Location())
	py, pm, pd := p.Date()
	ny, nm, nd := now.Date()
	return py == ny && pm == nm && pd == nd
}

// LoadItems reads an items.json file. A missing items array yields no items.
func LoadItems(path string) (ItemsFile, error) {
	var f ItemsFile
	b, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read items: %w", err)
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("parse items %s: %w", path, err)
	}
	return f, nil
}

// SaveItems writes f as indented JSON, replacing path atomically. The
// caller's items are not modified.
func SaveItems(path string, f ItemsFile) error {
	items := make([]Item, len(f.Items))
	copy(items, f.Items)
	for i := range items {
		if items[i].Themes == nil {
			items[i].Themes = []string{}
		}
	}
	f.Items = items
	return writeJSON(path, f)
}

// writeJSON encodes v next to path and renames it into place.
func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ByID indexes items by identifier.
func ByID(items []Item) map[string]Item {
	m := make(map[string]Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}
