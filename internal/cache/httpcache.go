package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HTTPEntry is the metadata stored next to a cached response body. ETag and
// LastModified drive conditional revalidation.
type HTTPEntry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	SavedAt      time.Time `json:"saved_at"`
}

// HTTPCache keeps fetched responses on disk as <sha256(url)>.meta.json and
// <sha256(url)>.body. There is no eviction besides PurgeHTTPCacheByAge.
type HTTPCache struct {
	Dir string
	// StrictPerms restricts the directory to 0700 and files to 0600.
	StrictPerms bool
}

// ErrNotConfigured is returned when the cache has no directory.
var ErrNotConfigured = errors.New("cache dir not configured")

// Key returns the file stem used for url.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (c *HTTPCache) dirMode() os.FileMode {
	if c.StrictPerms {
		return 0o700
	}
	return 0o755
}

func (c *HTTPCache) fileMode() os.FileMode {
	if c.StrictPerms {
		return 0o600
	}
	return 0o644
}

func (c *HTTPCache) prepare() error {
	if c == nil || c.Dir == "" {
		return ErrNotConfigured
	}
	if err := os.MkdirAll(c.Dir, c.dirMode()); err != nil {
		return err
	}
	if c.StrictPerms {
		return os.Chmod(c.Dir, 0o700)
	}
	return nil
}

func (c *HTTPCache) path(url, suffix string) string {
	return filepath.Join(c.Dir, Key(url)+suffix)
}

// LoadMeta returns the stored metadata for url.
func (c *HTTPCache) LoadMeta(_ context.Context, url string) (*HTTPEntry, error) {
	if err := c.prepare(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.path(url, ".meta.json"))
	if err != nil {
		return nil, err
	}
	var e HTTPEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return &e, nil
}

// LoadBody returns the stored body for url.
func (c *HTTPCache) LoadBody(_ context.Context, url string) ([]byte, error) {
	if err := c.prepare(); err != nil {
		return nil, err
	}
	return os.ReadFile(c.path(url, ".body"))
}

// Save writes the body, then atomically replaces the metadata so a reader
// never sees metadata pointing at a missing body.
func (c *HTTPCache) Save(_ context.Context, url, contentType, etag, lastModified string, body []byte) error {
	if err := c.prepare(); err != nil {
		return err
	}
	if err := os.WriteFile(c.path(url, ".body"), body, c.fileMode()); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	meta, err := json.Marshal(HTTPEntry{
		URL:          url,
		ContentType:  contentType,
		ETag:         etag,
		LastModified: lastModified,
		SavedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	final := c.path(url, ".meta.json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, meta, c.fileMode()); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return os.Rename(tmp, final)
}
