package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperifyio/newsdigest/internal/extract"
	"github.com/hyperifyio/newsdigest/internal/fetch"
)

func TestYouTubeID(t *testing.T) {
	cases := map[string]string{
		"https://youtu.be/abc123XYZ_-":                      "abc123XYZ_-",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10s": "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/xyz987/":             "xyz987",
		"https://www.youtube.com/channel/UC123":             "",
		"https://example.com/watch?v=notyoutube":            "notyoutube",
	}
	for in, want := range cases {
		if got := YouTubeID(in); got != want {
			t.Fatalf("YouTubeID(%q)=%q want %q", in, got, want)
		}
	}
	if !IsYouTube("https://YOUTU.BE/x") || IsYouTube("https://example.com/a") {
		t.Fatalf("IsYouTube mismatch")
	}
}

func newWorker(t *testing.T, h http.HandlerFunc) (*WorkerSource, *[]string) {
	t.Helper()
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path+"?"+r.URL.RawQuery)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewWorkerSource(srv.URL+"/", &fetch.Client{HTTPClient: srv.Client()}), &paths
}

func TestWorker_YouTubeUsesTranscript(t *testing.T) {
	ws, paths := newWorker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/yt-transcript" && r.URL.Query().Get("id") == "vid42" {
			_, _ = w.Write([]byte(`{"text":"the transcript"}`))
			return
		}
		http.NotFound(w, r)
	})
	got, err := ws.Text(context.Background(), "https://youtu.be/vid42")
	if err != nil || got != "the transcript" {
		t.Fatalf("got %q err %v", got, err)
	}
	if len(*paths) != 1 {
		t.Fatalf("expected one worker call, got %v", *paths)
	}
}

func TestWorker_TranscriptFailureFallsBackToExtract(t *testing.T) {
	ws, paths := newWorker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/extract" {
			_, _ = w.Write([]byte(`{"text":"extracted page"}`))
			return
		}
		_, _ = w.Write([]byte(`{"text":"   "}`))
	})
	got, err := ws.Text(context.Background(), "https://www.youtube.com/watch?v=abc")
	if err != nil || got != "extracted page" {
		t.Fatalf("got %q err %v", got, err)
	}
	if len(*paths) != 2 || !strings.HasPrefix((*paths)[1], "/extract?url=https%3A%2F%2F") {
		t.Fatalf("unexpected calls: %v", *paths)
	}
}

func TestWorker_ArticleUsesExtract(t *testing.T) {
	ws, paths := newWorker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"text":"article body"}`))
	})
	got, err := ws.Text(context.Background(), "https://example.com/a?b=1")
	if err != nil || got != "article body" {
		t.Fatalf("got %q err %v", got, err)
	}
	if (*paths)[0] != "/extract?url=https%3A%2F%2Fexample.com%2Fa%3Fb%3D1" {
		t.Fatalf("unexpected path %q", (*paths)[0])
	}
}

func TestWorker_FailuresAreUnavailable(t *testing.T) {
	bodies := []struct {
		status int
		body   string
	}{
		{http.StatusInternalServerError, `{"text":"x"}`},
		{http.StatusOK, `not json`},
		{http.StatusOK, `{"text":""}`},
		{http.StatusOK, `{}`},
	}
	for _, b := range bodies {
		b := b
		ws, _ := newWorker(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(b.status)
			_, _ = w.Write([]byte(b.body))
		})
		_, err := ws.Text(context.Background(), "https://example.com/a")
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("status %d body %q: expected ErrUnavailable, got %v", b.status, b.body, err)
		}
	}
}

func TestWorker_NoBaseURL(t *testing.T) {
	ws := NewWorkerSource("", nil)
	if _, err := ws.Text(context.Background(), "https://example.com"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestDirect_ExtractsArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>T</title></head><body><nav>menu</nav><article><p>Direct body text.</p></article></body></html>`))
	}))
	defer srv.Close()
	d := &DirectSource{Client: &fetch.Client{HTTPClient: srv.Client()}, Extractor: extract.HeuristicExtractor{}}
	got, err := d.Text(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "menu") || !strings.Contains(got, "Direct body text.") {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestDirect_YouTubeUnavailable(t *testing.T) {
	d := &DirectSource{}
	if _, err := d.Text(context.Background(), "https://youtu.be/abc"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

type denyAll struct{}

func (denyAll) Allowed(context.Context, string) bool { return false }

func TestDirect_RobotsVeto(t *testing.T) {
	d := &DirectSource{Robots: denyAll{}}
	_, err := d.Text(context.Background(), "https://example.com/page")
	if !errors.Is(err, ErrUnavailable) || !strings.Contains(err.Error(), "robots") {
		t.Fatalf("expected robots veto, got %v", err)
	}
}

type fixed struct {
	text string
	err  error
}

func (f fixed) Text(context.Context, string) (string, error) { return f.text, f.err }

func TestChain(t *testing.T) {
	c := Chain{None{}, fixed{text: " "}, fixed{text: "second"}}
	got, err := c.Text(context.Background(), "u")
	if err != nil || got != "second" {
		t.Fatalf("got %q err %v", got, err)
	}
	_, err = Chain{None{}, fixed{err: errors.New("boom")}}.Text(context.Background(), "u")
	if !errors.Is(err, ErrUnavailable) || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := (Chain{}).Text(context.Background(), "u"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("empty chain should be unavailable, got %v", err)
	}
}
