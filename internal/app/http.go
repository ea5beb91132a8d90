package app

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/hyperifyio/newsdigest/internal/cache"
	"github.com/hyperifyio/newsdigest/internal/fetch"
)

// newHTTPClient returns a pooled client for feed, page and worker requests.
// Certificate checks stay on unless sslVerify is false.
func newHTTPClient(sslVerify bool) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if !sslVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// newFetchClient builds the shared fetch client from cfg.
func newFetchClient(cfg Config, httpCache *cache.HTTPCache) *fetch.Client {
	return &fetch.Client{
		HTTPClient:        newHTTPClient(!cfg.InsecureSkipVerify),
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.MaxAttempts,
		PerRequestTimeout: cfg.HTTPTimeout,
		Cache:             httpCache,
		MaxConcurrent:     cfg.MaxConcurrent,
	}
}
