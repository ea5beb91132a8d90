package feed

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Sources is the feeds.yml schema.
type Sources struct {
	YouTube  []YouTubeSource `yaml:"youtube"`
	RSS      []FeedSource    `yaml:"rss"`
	Websites []FeedSource    `yaml:"websites"`

	// TwitterEmbeds lists accounts whose latest posts are embedded.
	TwitterEmbeds []TwitterSource `yaml:"twitter_embeds"`
}

// TwitterSource is an X/Twitter handle, with or without the leading @.
type TwitterSource struct {
	Handle string `yaml:"handle"`
}

// Labels used when a source has none.
const (
	DefaultYouTubeLabel = "YouTube"
	DefaultRSSLabel     = "Newsletter"
	DefaultWebsiteLabel = "Website"
)

// YouTubeSource names a channel by id or by @handle.
type YouTubeSource struct {
	ChannelID string `yaml:"channel_id"`
	Handle    string `yaml:"handle"`
	Label     string `yaml:"label"`
}

// DisplayLabel is the label, else the @handle, else the channel id, else
// DefaultYouTubeLabel.
func (y YouTubeSource) DisplayLabel() string {
	if l := strings.TrimSpace(y.Label); l != "" {
		return l
	}
	if h := strings.TrimPrefix(strings.TrimSpace(y.Handle), "@"); h != "" {
		return "@" + h
	}
	if id := strings.TrimSpace(y.ChannelID); id != "" {
		return id
	}
	return DefaultYouTubeLabel
}

// FeedSource is an RSS or Atom feed URL with a display label.
type FeedSource struct {
	Label   string `yaml:"label"`
	FeedURL string `yaml:"feed_url"`
}

// Themes maps a theme name to the keywords that assign it.
type Themes map[string][]string

type themesFile struct {
	Themes Themes `yaml:"themes"`
}

// LoadSources reads feeds.yml. An empty file is valid.
func LoadSources(path string) (Sources, error) {
	var s Sources
	b, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read feeds: %w", err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("parse feeds %s: %w", path, err)
	}
	return s, nil
}

// LoadThemes reads themes.yml. A missing path yields no themes.
func LoadThemes(path string) (Themes, error) {
	if path == "" {
		return Themes{}, nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Themes{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read themes: %w", err)
	}
	var tf themesFile
	if err := yaml.Unmarshal(b, &tf); err != nil {
		return nil, fmt.Errorf("parse themes %s: %w", path, err)
	}
	if tf.Themes == nil {
		tf.Themes = Themes{}
	}
	return tf.Themes, nil
}
