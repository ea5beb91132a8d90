package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema.
type FileConfig struct {
	Items    string `yaml:"items" json:"items"`
	Feeds    string `yaml:"feeds" json:"feeds"`
	Themes   string `yaml:"themes" json:"themes"`
	Schedule string `yaml:"schedule" json:"schedule"`

	Twitter struct {
		Out       string   `yaml:"out" json:"out"`
		Instances []string `yaml:"instances" json:"instances"`
	} `yaml:"twitter" json:"twitter"`

	State struct {
		Dir         string `yaml:"dir" json:"dir"`
		StrictPerms bool   `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"state" json:"state"`

	Content struct {
		Mode         string `yaml:"mode" json:"mode"`
		WorkerURL    string `yaml:"workerURL" json:"workerURL"`
		IgnoreRobots bool   `yaml:"ignoreRobots" json:"ignoreRobots"`
	} `yaml:"content" json:"content"`

	HTTP struct {
		UserAgent          string   `yaml:"userAgent" json:"userAgent"`
		Timeout            Duration `yaml:"timeout" json:"timeout"`
		MaxAttempts        int      `yaml:"maxAttempts" json:"maxAttempts"`
		MaxConcurrent      int      `yaml:"maxConcurrent" json:"maxConcurrent"`
		InsecureSkipVerify bool     `yaml:"insecureSkipVerify" json:"insecureSkipVerify"`
	} `yaml:"http" json:"http"`

	Cache struct {
		Dir         string   `yaml:"dir" json:"dir"`
		MaxAge      Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool     `yaml:"clear" json:"clear"`
		StrictPerms bool     `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Digest struct {
		MaxBullets  int      `yaml:"maxBullets" json:"maxBullets"`
		Concurrency int      `yaml:"concurrency" json:"concurrency"`
		ItemTimeout Duration `yaml:"itemTimeout" json:"itemTimeout"`
	} `yaml:"digest" json:"digest"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// Duration accepts "90s"-style strings in YAML and JSON.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig, choosing by extension.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays file values onto cfg for every field still at its
// zero or default value, so explicit flags win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setString(&cfg.ItemsPath, defaultItemsPath, fc.Items)
	setString(&cfg.FeedsPath, defaultFeedsPath, fc.Feeds)
	setString(&cfg.ThemesPath, defaultThemesPath, fc.Themes)
	setString(&cfg.Schedule, "", fc.Schedule)
	setString(&cfg.TwitterPath, "", fc.Twitter.Out)
	if len(cfg.NitterInstances) == 0 && len(fc.Twitter.Instances) > 0 {
		cfg.NitterInstances = append([]string(nil), fc.Twitter.Instances...)
	}

	setString(&cfg.StateDir, defaultStateDir, fc.State.Dir)
	cfg.StateStrictPerms = cfg.StateStrictPerms || fc.State.StrictPerms

	setString(&cfg.ContentMode, ContentAuto, fc.Content.Mode)
	setString(&cfg.WorkerURL, "", fc.Content.WorkerURL)
	cfg.IgnoreRobots = cfg.IgnoreRobots || fc.Content.IgnoreRobots

	setString(&cfg.UserAgent, defaultUserAgent(), fc.HTTP.UserAgent)
	if (cfg.HTTPTimeout == 0 || cfg.HTTPTimeout == defaultTimeout) && fc.HTTP.Timeout > 0 {
		cfg.HTTPTimeout = time.Duration(fc.HTTP.Timeout)
	}
	setInt(&cfg.MaxAttempts, defaultAttempts, fc.HTTP.MaxAttempts)
	setInt(&cfg.MaxConcurrent, 0, fc.HTTP.MaxConcurrent)
	cfg.InsecureSkipVerify = cfg.InsecureSkipVerify || fc.HTTP.InsecureSkipVerify

	setString(&cfg.CacheDir, defaultCacheDir, fc.Cache.Dir)
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAge)
	}
	cfg.CacheClear = cfg.CacheClear || fc.Cache.Clear
	cfg.CacheStrictPerms = cfg.CacheStrictPerms || fc.Cache.StrictPerms

	setInt(&cfg.MaxBullets, defaultMaxBullets, fc.Digest.MaxBullets)
	setInt(&cfg.Concurrency, 1, fc.Digest.Concurrency)
	if (cfg.ItemTimeout == 0 || cfg.ItemTimeout == defaultItemTimeout) && fc.Digest.ItemTimeout > 0 {
		cfg.ItemTimeout = time.Duration(fc.Digest.ItemTimeout)
	}
	cfg.Verbose = cfg.Verbose || fc.Verbose
}

func setString(dst *string, def, v string) {
	if (*dst == "" || *dst == def) && v != "" {
		*dst = v
	}
}

func setInt(dst *int, def, v int) {
	if (*dst == 0 || *dst == def) && v > 0 {
		*dst = v
	}
}
