package content

import (
	"net/url"
	"regexp"
	"strings"
)

var youTubeHost = regexp.MustCompile(`(?i)youtube\.com|youtu\.be`)

// IsYouTube reports whether rawURL points at YouTube.
func IsYouTube(rawURL string) bool {
	return youTubeHost.MatchString(rawURL)
}

// YouTubeID extracts the video id from youtu.be/<id>, ?v=<id> and
// /embed/<id> URLs. It returns "" when no id is present.
func YouTubeID(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if strings.HasSuffix(host, "youtu.be") {
		return firstSegment(u.Path)
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if rest, ok := strings.CutPrefix(u.Path, "/embed/"); ok {
		return firstSegment(rest)
	}
	return ""
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
