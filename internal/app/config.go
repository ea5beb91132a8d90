package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Content modes select where digest text comes from.
const (
	// ContentAuto uses the worker when WorkerURL is set and nothing otherwise.
	ContentAuto   = "auto"
	ContentWorker = "worker"
	ContentDirect = "direct"
	// ContentChain tries the worker first, then a direct fetch.
	ContentChain = "chain"
	ContentNone  = "none"
)

// Defaults applied by DefaultConfig and recognized by ApplyFileConfig.
const (
	defaultItemsPath   = "docs/data/items.json"
	defaultFeedsPath   = "feeds.yml"
	defaultThemesPath  = "themes.yml"
	defaultStateDir    = ".newsdigest"
	defaultCacheDir    = ".newsdigest-cache"
	defaultMaxBullets  = 6
	defaultTimeout     = 15 * time.Second
	defaultAttempts    = 2
	defaultItemTimeout = 60 * time.Second
)

// Config holds runtime configuration for the application.
type Config struct {
	ItemsPath  string
	FeedsPath  string
	ThemesPath string
	// TwitterPath is where embedded posts go; empty means beside ItemsPath.
	TwitterPath string
	// NitterInstances overrides the default Nitter mirrors, tried in order.
	NitterInstances []string
	// Schedule is a cron expression for repeated builds; empty builds once.
	Schedule string

	StateDir         string
	StateStrictPerms bool

	// Content
	WorkerURL   string
	ContentMode string
	// IgnoreRobots lets direct fetches skip robots.txt checks.
	IgnoreRobots bool

	// HTTP
	UserAgent          string
	HTTPTimeout        time.Duration
	MaxAttempts        int
	MaxConcurrent      int
	InsecureSkipVerify bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	// Digest
	MaxBullets  int
	Concurrency int
	// ItemTimeout bounds the content fetch for one digest item.
	ItemTimeout time.Duration

	Verbose bool
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ItemsPath:   defaultItemsPath,
		FeedsPath:   defaultFeedsPath,
		ThemesPath:  defaultThemesPath,
		StateDir:    defaultStateDir,
		ContentMode: ContentAuto,
		UserAgent:   defaultUserAgent(),
		HTTPTimeout: defaultTimeout,
		MaxAttempts: defaultAttempts,
		CacheDir:    defaultCacheDir,
		MaxBullets:  defaultMaxBullets,
		Concurrency: 1,
		ItemTimeout: defaultItemTimeout,
	}
}

func defaultUserAgent() string {
	return "newsdigest/" + BuildVersion + " (+https://github.com/hyperifyio/newsdigest)"
}

// ValidateConfig rejects settings the application cannot run with.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.ItemsPath) == "" {
		return errors.New("config: items path is required")
	}
	if strings.TrimSpace(cfg.StateDir) == "" {
		return errors.New("config: state dir is required")
	}
	switch cfg.ContentMode {
	case ContentAuto, ContentWorker, ContentDirect, ContentChain, ContentNone:
	default:
		return fmt.Errorf("config: unknown content mode %q", cfg.ContentMode)
	}
	if (cfg.ContentMode == ContentWorker || cfg.ContentMode == ContentChain) && strings.TrimSpace(cfg.WorkerURL) == "" {
		return fmt.Errorf("config: content mode %q needs a worker url", cfg.ContentMode)
	}
	if cfg.MaxAttempts < 0 || cfg.MaxConcurrent < 0 || cfg.MaxBullets < 0 || cfg.Concurrency < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.HTTPTimeout < 0 || cfg.CacheMaxAge < 0 || cfg.ItemTimeout < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	return nil
}
