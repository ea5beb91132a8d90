// Package robots answers whether a page may be fetched under its site's
// robots.txt. It backs the direct content mode, which fetches article pages
// on the reader's behalf.
package robots

import (
	"bufio"
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/fetch"
)

// Rules holds the groups of one robots.txt.
type Rules struct {
	Groups []Group
}

// Group is a set of directives for its user agents.
type Group struct {
	Agents   []string
	Allow    []string
	Disallow []string
}

// Parse reads robots.txt text. Unknown directives are ignored.
func Parse(text string) Rules {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var groups []Group
	var cur Group
	flush := func() {
		if len(cur.Agents) > 0 {
			groups = append(groups, cur)
		}
		cur = Group{}
	}
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent":
			if len(cur.Allow) > 0 || len(cur.Disallow) > 0 {
				flush()
			}
			cur.Agents = append(cur.Agents, strings.ToLower(val))
		case "allow":
			cur.Allow = append(cur.Allow, val)
		case "disallow":
			cur.Disallow = append(cur.Disallow, val)
		}
	}
	flush()
	return Rules{Groups: groups}
}

// Allowed reports whether path (with optional query) may be fetched by
// userAgent. The longest matching pattern wins and Allow wins ties.
func (r Rules) Allowed(userAgent, path string) bool {
	g := r.group(userAgent)
	if g == nil {
		return true
	}
	best, allow := -1, true
	consider := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" || !matches(p, path) {
				continue
			}
			score := len(strings.ReplaceAll(strings.TrimSuffix(p, "$"), "*", ""))
			if score > best || (score == best && isAllow) {
				best, allow = score, isAllow
			}
		}
	}
	consider(g.Disallow, false)
	consider(g.Allow, true)
	return allow
}

// group picks the group whose agent token is the longest substring of
// userAgent, falling back to "*".
func (r Rules) group(userAgent string) *Group {
	ua := strings.ToLower(userAgent)
	var best *Group
	bestScore := -1
	for i := range r.Groups {
		for _, a := range r.Groups[i].Agents {
			score := -1
			switch {
			case a == "*":
				score = 0
			case a != "" && strings.Contains(ua, a):
				score = len(a)
			}
			if score > bestScore {
				best, bestScore = &r.Groups[i], score
			}
		}
	}
	return best
}

func matches(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")
	var b strings.Builder
	b.WriteString("^")
	for _, part := range strings.Split(pattern, "*") {
		b.WriteString(regexp.QuoteMeta(part))
		b.WriteString(".*")
	}
	expr := strings.TrimSuffix(b.String(), ".*")
	if anchored {
		expr += "$"
	}
	re, err := regexp.Compile(expr)
	return err == nil && re.MatchString(path)
}

// Checker fetches and memoizes robots.txt per origin. A site whose
// robots.txt is missing or unreachable allows everything.
type Checker struct {
	Client    *fetch.Client
	UserAgent string
	// Expiry bounds how long rules are reused. Zero means 30 minutes.
	Expiry time.Duration

	mu  sync.Mutex
	mem map[string]entry
	now func() time.Time
}

type entry struct {
	rules  Rules
	expiry time.Time
}

// Allowed reports whether rawURL may be fetched.
func (c *Checker) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return c.rules(ctx, u.Scheme+"://"+u.Host).Allowed(c.UserAgent, path)
}

func (c *Checker) rules(ctx context.Context, origin string) Rules {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	c.mu.Lock()
	if e, ok := c.mem[origin]; ok && now().Before(e.expiry) {
		c.mu.Unlock()
		return e.rules
	}
	c.mu.Unlock()

	client := c.Client
	if client == nil {
		client = &fetch.Client{}
	}
	var rules Rules
	body, _, err := client.WithContentTypes("text/plain").Get(ctx, origin+"/robots.txt")
	var se *fetch.StatusError
	switch {
	case err == nil:
		rules = Parse(string(body))
	case errors.As(err, &se):
		log.Debug().Int("status", se.Code).Str("origin", origin).Msg("no robots.txt")
	default:
		log.Debug().Err(err).Str("origin", origin).Msg("robots.txt unavailable")
	}

	exp := c.Expiry
	if exp <= 0 {
		exp = 30 * time.Minute
	}
	c.mu.Lock()
	if c.mem == nil {
		c.mem = map[string]entry{}
	}
	c.mem[origin] = entry{rules: rules, expiry: now().Add(exp)}
	c.mu.Unlock()
	return rules
}
