package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/app"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := app.LoadEnvFiles(".env"); err != nil {
		log.Warn().Err(err).Msg("could not load .env")
	}

	cfg := app.DefaultConfig()
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	flag.StringVar(&cfg.ItemsPath, "items", cfg.ItemsPath, "Path to items.json")
	flag.StringVar(&cfg.StateDir, "state.dir", cfg.StateDir, "Directory holding read and selection state")
	flag.BoolVar(&cfg.StateStrictPerms, "state.strictPerms", false, "Restrict state permissions (0700 dirs, 0600 files)")
	flag.StringVar(&cfg.WorkerURL, "worker.url", "", "Base URL of the extract/transcript worker")
	flag.StringVar(&cfg.ContentMode, "content.mode", cfg.ContentMode, "Where digest text comes from: auto, worker, direct, chain or none")
	flag.BoolVar(&cfg.IgnoreRobots, "content.ignoreRobots", false, "Do not consult robots.txt in direct mode")
	flag.StringVar(&cfg.UserAgent, "http.ua", cfg.UserAgent, "User-Agent for outgoing requests")
	flag.DurationVar(&cfg.HTTPTimeout, "http.timeout", cfg.HTTPTimeout, "Per-request timeout")
	flag.IntVar(&cfg.MaxConcurrent, "http.maxConcurrent", 0, "Maximum in-flight requests (0 = unlimited)")
	flag.BoolVar(&cfg.InsecureSkipVerify, "http.insecure", false, "Skip TLS certificate verification")
	flag.StringVar(&cfg.CacheDir, "cache.dir", cfg.CacheDir, "HTTP cache directory")
	flag.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Purge cache entries older than this (0 disables)")
	flag.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear the cache before running")
	flag.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	flag.DurationVar(&cfg.ItemTimeout, "digest.itemTimeout", cfg.ItemTimeout, "Time allowed to fetch one digest item before falling back")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("newsdigest %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return
	}

	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("load config")
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvToConfig(&cfg)

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(cfg, flag.Args()); err != nil {
		if errors.Is(err, app.ErrNoSelection) {
			os.Exit(2)
		}
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Error().Err(err).Msg("run failed")
		if errors.Is(err, app.ErrUnknownCommand) {
			usage()
		}
		os.Exit(1)
	}
}

func run(cfg app.Config, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx, args, os.Stdout)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: newsdigest [flags] <command> [args]\n\ncommands: %s\n\nflags:\n", strings.Join(app.Commands, ", "))
	flag.PrintDefaults()
}
