// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Feed URLs monitored by default. Overridable for staging setups.
const (
	defaultESXiFeedURL    = "https://techdocs.broadcom.com/rss/vsphere-esxi.xml"
	defaultGPortalFeedURL = "https://status.g-portal.com/history.atom"
	defaultGitHubFeedURL  = "https://www.githubstatus.com/history.atom"
	defaultRustFeedURL    = "https://blog.rust-lang.org/feed.xml"
)

// Config holds the application configuration.
type Config struct {
	DiscordBotToken string
	RSSChannelID    string
	LogChannelID    string

	// RedisURI selects the Redis cache backend when set; otherwise the
	// SQLite backend at CachePath is used.
	RedisURI  string
	CachePath string

	PollInterval time.Duration
	LogLevel     string

	ESXiFeedURL    string
	GPortalFeedURL string
	GitHubFeedURL  string
	RustFeedURL    string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("DISCORD_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}

	rssChannel := os.Getenv("RSS_CHANNEL_ID")
	if rssChannel == "" {
		return nil, fmt.Errorf("RSS_CHANNEL_ID is required")
	}

	logChannel := os.Getenv("LOG_CHANNEL_ID")
	if logChannel == "" {
		return nil, fmt.Errorf("LOG_CHANNEL_ID is required")
	}

	cachePath := os.Getenv("CACHE_PATH")
	if cachePath == "" {
		cachePath = "./data/cache.db"
	}

	interval := 300 * time.Second
	if raw := os.Getenv("POLL_INTERVAL_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid POLL_INTERVAL_SECONDS %q", raw)
		}
		interval = time.Duration(secs) * time.Second
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		DiscordBotToken: token,
		RSSChannelID:    rssChannel,
		LogChannelID:    logChannel,
		RedisURI:        os.Getenv("REDIS_URI"),
		CachePath:       cachePath,
		PollInterval:    interval,
		LogLevel:        logLevel,
		ESXiFeedURL:     envOr("ESXI_FEED_URL", defaultESXiFeedURL),
		GPortalFeedURL:  envOr("GPORTAL_FEED_URL", defaultGPortalFeedURL),
		GitHubFeedURL:   envOr("GITHUB_FEED_URL", defaultGitHubFeedURL),
		RustFeedURL:     envOr("RUST_FEED_URL", defaultRustFeedURL),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
