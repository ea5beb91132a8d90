package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hyperifyio/newsdigest/internal/fetch"
)

const sample = `# comment
User-agent: *
Disallow: /private
Allow: /private/open
Disallow: /*.pdf$

User-agent: newsdigest
Disallow: /drafts
`

func TestRules_Allowed(t *testing.T) {
	r := Parse(sample)
	cases := []struct {
		ua, path string
		want     bool
	}{
		{"othersbot", "/", true},
		{"othersbot", "/private/x", false},
		{"othersbot", "/private/open/page", true},
		{"othersbot", "/files/report.pdf", false},
		{"othersbot", "/files/report.pdf?x=1", true},
		{"newsdigest/1.0", "/private/x", true},
		{"newsdigest/1.0", "/drafts/a", false},
	}
	for _, c := range cases {
		if got := r.Allowed(c.ua, c.path); got != c.want {
			t.Fatalf("Allowed(%q, %q)=%v want %v", c.ua, c.path, got, c.want)
		}
	}
	if !(Rules{}).Allowed("any", "/x") {
		t.Fatalf("empty rules should allow")
	}
}

func TestChecker_FetchesOncePerOrigin(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /secret\n"))
	}))
	defer srv.Close()

	c := &Checker{Client: &fetch.Client{HTTPClient: srv.Client()}, UserAgent: "newsdigest"}
	if !c.Allowed(context.Background(), srv.URL+"/news/1") {
		t.Fatalf("expected news allowed")
	}
	if c.Allowed(context.Background(), srv.URL+"/secret/2") {
		t.Fatalf("expected secret disallowed")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one robots fetch, got %d", hits.Load())
	}
}

func TestChecker_MissingRobotsAllows(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	c := &Checker{Client: &fetch.Client{HTTPClient: srv.Client()}}
	if !c.Allowed(context.Background(), srv.URL+"/anything") {
		t.Fatalf("missing robots.txt should allow")
	}
}
