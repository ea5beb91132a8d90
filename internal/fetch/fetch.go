// Package fetch is the HTTP GET client shared by the feed builder and the
// content sources. It adds per-request timeouts, bounded retries on
// transient failures, a concurrency gate, a content-type allowlist and
// conditional revalidation against an on-disk cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/cache"
)

// Content-type groups accepted by callers of Get.
var (
	HTMLTypes = []string{"text/html", "application/xhtml+xml"}
	JSONTypes = []string{"application/json", "text/json"}
	FeedTypes = []string{"application/rss+xml", "application/atom+xml", "application/xml", "text/xml", "application/rdf+xml"}
)

// DefaultMaxBodyBytes caps response bodies when MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 8 << 20

// StatusError reports a non-2xx, non-304 response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	if e.Code >= 500 {
		return fmt.Sprintf("server error: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// Client issues GET requests. The zero value works with defaults: one
// attempt, HTML content types, no cache.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt; values below 1 mean 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt. Zero leaves it to HTTPClient.
	PerRequestTimeout time.Duration
	// AllowedContentTypes lists accepted Content-Type prefixes. Empty means HTMLTypes.
	AllowedContentTypes []string
	// MaxBodyBytes truncates larger bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// Cache, when set, stores 200 responses and revalidates with ETag/Last-Modified.
	Cache *cache.HTTPCache
	// BypassCache skips conditional headers but still refreshes the cache.
	BypassCache bool
	// RedirectMaxHops caps redirects. Zero means 5.
	RedirectMaxHops int
	// MaxConcurrent limits in-flight requests for this client. Zero means unlimited.
	MaxConcurrent int

	limiter     chan struct{}
	limiterOnce sync.Once
}

// WithContentTypes returns a shallow copy of c that accepts types instead.
// The copy shares the HTTP client and cache but has its own limiter.
func (c *Client) WithContentTypes(types ...string) *Client {
	return &Client{
		HTTPClient:          c.HTTPClient,
		UserAgent:           c.UserAgent,
		MaxAttempts:         c.MaxAttempts,
		PerRequestTimeout:   c.PerRequestTimeout,
		AllowedContentTypes: types,
		MaxBodyBytes:        c.MaxBodyBytes,
		Cache:               c.Cache,
		BypassCache:         c.BypassCache,
		RedirectMaxHops:     c.RedirectMaxHops,
		MaxConcurrent:       c.MaxConcurrent,
	}
}

// Get fetches rawURL and returns the body and its content type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag, lastMod = meta.ETag, meta.LastModified
		}
	}
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		res, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			return c.finish(ctx, rawURL, res)
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		log.Debug().Err(err).Str("url", rawURL).Int("attempt", i+1).Msg("retrying fetch")
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	return nil, "", lastErr
}

type response struct {
	status       int
	body         []byte
	contentType  string
	etag         string
	lastModified string
}

func (c *Client) finish(ctx context.Context, rawURL string, res response) ([]byte, string, error) {
	if res.status == http.StatusNotModified {
		if c.Cache == nil {
			return nil, "", errors.New("not modified without cache")
		}
		body, err := c.Cache.LoadBody(ctx, rawURL)
		if err != nil {
			return nil, "", fmt.Errorf("load cached body: %w", err)
		}
		ct := res.contentType
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta.ContentType != "" {
			ct = meta.ContentType
		}
		log.Debug().Str("url", rawURL).Msg("served from cache")
		return body, ct, nil
	}
	if c.Cache != nil {
		if err := c.Cache.Save(ctx, rawURL, res.contentType, res.etag, res.lastModified, res.body); err != nil {
			log.Debug().Err(err).Str("url", rawURL).Msg("cache save failed")
		}
	}
	return res.body, res.contentType, nil
}

func (c *Client) tryOnce(ctx context.Context, rawURL, etag, lastMod string) (response, error) {
	if err := c.acquire(ctx); err != nil {
		return response{}, err
	}
	defer c.release()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	res := response{
		status:       resp.StatusCode,
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}
	if resp.StatusCode == http.StatusNotModified {
		return res, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, &StatusError{Code: resp.StatusCode}
	}
	if !c.allowed(res.contentType) {
		return response{}, fmt.Errorf("unsupported content type: %s", res.contentType)
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	res.body, err = io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}
	return res, nil
}

func (c *Client) httpClient() *http.Client {
	base := http.Client{Timeout: c.PerRequestTimeout}
	if c.HTTPClient != nil {
		base = *c.HTTPClient
	}
	base.CheckRedirect = c.checkRedirect
	return &base
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	if len(via) >= max {
		return errors.New("too many redirects")
	}
	if !isHTTPScheme(req.URL) {
		return errors.New("redirect to unsupported scheme")
	}
	return nil
}

func (c *Client) allowed(contentType string) bool {
	types := c.AllowedContentTypes
	if len(types) == 0 {
		types = HTMLTypes
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, t := range types {
		if strings.HasPrefix(ct, t) {
			return true
		}
	}
	return false
}

// isTransient treats 5xx responses and deadline expiry as worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// acquire waits for a free request slot or for ctx to end.
func (c *Client) acquire(ctx context.Context) error {
	if c.MaxConcurrent <= 0 {
		return nil
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	select {
	case c.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	<-c.limiter
}
