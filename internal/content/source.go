// Package content resolves the full text behind an item URL. Sources either
// ask a worker service for an article extraction or a video transcript, or
// fetch the page directly and extract the article locally.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable reports that a source has no usable text for a URL.
var ErrUnavailable = errors.New("content unavailable")

// Source returns the full text for rawURL.
type Source interface {
	Text(ctx context.Context, rawURL string) (string, error)
}

// None never has text. It stands in when no worker is configured.
type None struct{}

func (None) Text(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// Chain tries each source in order and returns the first non-blank text.
type Chain []Source

func (c Chain) Text(ctx context.Context, rawURL string) (string, error) {
	var errs []error
	for _, s := range c {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := s.Text(ctx, rawURL)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return "", ErrUnavailable
	}
	return "", fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}
