package content

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/fetch"
)

// WorkerSource asks a worker service for text. YouTube URLs go to
// /yt-transcript first and fall back to /extract like any other URL.
type WorkerSource struct {
	BaseURL string
	Client  *fetch.Client
}

type workerResponse struct {
	Text string `json:"text"`
}

// NewWorkerSource returns a worker source whose client accepts JSON bodies.
func NewWorkerSource(baseURL string, client *fetch.Client) *WorkerSource {
	if client == nil {
		client = &fetch.Client{}
	}
	return &WorkerSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client.WithContentTypes(fetch.JSONTypes...),
	}
}

func (w *WorkerSource) Text(ctx context.Context, rawURL string) (string, error) {
	if w.BaseURL == "" {
		return "", unavailable("no worker configured")
	}
	if IsYouTube(rawURL) {
		if id := YouTubeID(rawURL); id != "" {
			text, err := w.call(ctx, "/yt-transcript?id="+url.QueryEscape(id))
			if err == nil {
				return text, nil
			}
			log.Debug().Err(err).Str("id", id).Msg("transcript unavailable, trying extract")
		}
	}
	return w.call(ctx, "/extract?url="+url.QueryEscape(rawURL))
}

func (w *WorkerSource) call(ctx context.Context, endpoint string) (string, error) {
	client := w.Client
	if client == nil {
		client = (&fetch.Client{}).WithContentTypes(fetch.JSONTypes...)
	}
	body, _, err := client.Get(ctx, w.BaseURL+endpoint)
	if err != nil {
		return "", unavailable("worker %s: %v", endpoint, err)
	}
	var resp workerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", unavailable("decode worker response: %v", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", unavailable("worker returned no text")
	}
	return resp.Text, nil
}
