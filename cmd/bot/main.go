package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"feedwatch/internal/cache"
	"feedwatch/internal/config"
	"feedwatch/internal/delivery"
	"feedwatch/internal/discord"
	"feedwatch/internal/feed"
	"feedwatch/internal/fetcher"
	"feedwatch/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := openCache(ctx, cfg, log)
	if err != nil {
		log.Error("open cache", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	client, err := discord.New(cfg.DiscordBotToken, log)
	if err != nil {
		log.Error("create discord client", "error", err)
		os.Exit(1)
	}
	if err := client.Open(); err != nil {
		log.Error("open discord gateway", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	f := fetcher.New(http.DefaultClient)

	proc := delivery.New(store, client, cfg.RSSChannelID, cfg.LogChannelID, log)
	proc.Add(feed.NewESXi(cfg.ESXiFeedURL, store, f, log))
	proc.Add(feed.NewGPortal(cfg.GPortalFeedURL, store, f, log))
	proc.Add(feed.NewGitHubStatus(cfg.GitHubFeedURL, store, f, log))
	proc.Add(feed.NewRustBlog(cfg.RustFeedURL, store, f, log))

	sched := scheduler.New(proc, log)
	sched.SetTickInterval(cfg.PollInterval)

	sup := scheduler.NewSupervisor(log)
	sup.Go(ctx, "rss", sched.Run)

	log.Info("feedwatch started")
	<-ctx.Done()

	sup.Wait()
	log.Info("feedwatch stopped")
}

// openCache picks the Redis backend when a URI is configured and falls back
// to local SQLite otherwise. Redis construction blocks until the store
// answers a health probe.
func openCache(ctx context.Context, cfg *config.Config, log *slog.Logger) (cache.Cache, error) {
	if cfg.RedisURI != "" {
		return cache.NewRedis(ctx, cfg.RedisURI, log)
	}

	if dir := filepath.Dir(cfg.CachePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}
	return cache.NewSQLite(cfg.CachePath)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
