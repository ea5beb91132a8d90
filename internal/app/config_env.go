package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "NEWSDIGEST_"

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

// ApplyEnvToConfig fills fields of cfg that are still zero or default from
// NEWSDIGEST_* environment variables.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	setString(&cfg.ItemsPath, defaultItemsPath, getenv("ITEMS"))
	setString(&cfg.FeedsPath, defaultFeedsPath, getenv("FEEDS"))
	setString(&cfg.ThemesPath, defaultThemesPath, getenv("THEMES"))
	setString(&cfg.Schedule, "", getenv("SCHEDULE"))
	setString(&cfg.TwitterPath, "", getenv("TWITTER_OUT"))
	if len(cfg.NitterInstances) == 0 {
		for _, inst := range strings.Split(getenv("NITTER_INSTANCES"), ",") {
			if inst = strings.TrimSpace(inst); inst != "" {
				cfg.NitterInstances = append(cfg.NitterInstances, inst)
			}
		}
	}
	setString(&cfg.StateDir, defaultStateDir, getenv("STATE_DIR"))
	setString(&cfg.WorkerURL, "", getenv("WORKER_URL"))
	setString(&cfg.ContentMode, ContentAuto, getenv("CONTENT_MODE"))
	setString(&cfg.UserAgent, defaultUserAgent(), getenv("USER_AGENT"))
	setString(&cfg.CacheDir, defaultCacheDir, getenv("CACHE_DIR"))

	setInt(&cfg.MaxAttempts, defaultAttempts, envInt("MAX_ATTEMPTS"))
	setInt(&cfg.MaxConcurrent, 0, envInt("MAX_CONCURRENT"))
	setInt(&cfg.MaxBullets, defaultMaxBullets, envInt("MAX_BULLETS"))
	setInt(&cfg.Concurrency, 1, envInt("CONCURRENCY"))

	if d := envDuration("HTTP_TIMEOUT"); d > 0 && (cfg.HTTPTimeout == 0 || cfg.HTTPTimeout == defaultTimeout) {
		cfg.HTTPTimeout = d
	}
	if d := envDuration("ITEM_TIMEOUT"); d > 0 && (cfg.ItemTimeout == 0 || cfg.ItemTimeout == defaultItemTimeout) {
		cfg.ItemTimeout = d
	}
	if d := envDuration("CACHE_MAX_AGE"); d > 0 && cfg.CacheMaxAge == 0 {
		cfg.CacheMaxAge = d
	}

	setBool := func(dst *bool, key string) {
		if *dst {
			return
		}
		switch strings.ToLower(getenv(key)) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.StateStrictPerms, "STATE_STRICT_PERMS")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setBool(&cfg.IgnoreRobots, "IGNORE_ROBOTS")
	setBool(&cfg.InsecureSkipVerify, "INSECURE_SKIP_VERIFY")
	setBool(&cfg.Verbose, "VERBOSE")
}

func envInt(key string) int {
	n, err := strconv.Atoi(getenv(key))
	if err != nil {
		return 0
	}
	return n
}

func envDuration(key string) time.Duration {
	s := getenv(key)
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
