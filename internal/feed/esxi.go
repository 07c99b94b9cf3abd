package feed

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"feedwatch/internal/cache"
	"feedwatch/internal/fetcher"
)

// ESXi watches the hypervisor patch-release feed and announces new patch
// rollouts. Only the identifier (the patch category term) is tracked.
type ESXi struct {
	url     string
	cache   cache.Cache
	fetcher *fetcher.Fetcher
	log     *slog.Logger
}

// NewESXi creates the ESXi patch announcement source.
func NewESXi(url string, c cache.Cache, f *fetcher.Fetcher, log *slog.Logger) *ESXi {
	return &ESXi{url: url, cache: c, fetcher: f, log: log}
}

// Name returns the source name used to namespace cache keys.
func (e *ESXi) Name() string { return "ESXi" }

// URL returns the feed URL.
func (e *ESXi) URL() string { return e.url }

var rePatchVersion = regexp.MustCompile(`(?i)Update\s+([0-9]+)([a-z]?)`)

func patchVersion(term string) (string, bool) {
	caps := rePatchVersion.FindStringSubmatch(term)
	if caps == nil {
		return "", false
	}
	return "Update " + caps[1] + caps[2], true
}

// Process announces a patch when the newest entry's version differs from the
// cached one.
func (e *ESXi) Process(ctx context.Context) (*Output, error) {
	parsed, err := e.fetcher.Fetch(ctx, e.url)
	if err != nil {
		return nil, err
	}

	entry, err := newestEntry(e.Name(), parsed)
	if err != nil {
		return nil, err
	}

	if len(entry.Categories) < 4 {
		return nil, &ExtractionError{
			Source: e.Name(),
			Detail: fmt.Sprintf("expected at least 4 categories, got %d", len(entry.Categories)),
		}
	}
	term := entry.Categories[3]

	key := CacheKey(e.Name())
	cached, found, err := e.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		// First sighting or TTL lapse: seed quietly so a process restart
		// never re-announces the current patch.
		e.log.Debug("seeding cache", "source", e.Name(), "term", term)
		return nil, cache.Save(ctx, e.cache, key, term, idTTL)
	}

	patch, ok := patchVersion(term)
	if !ok {
		return nil, &ExtractionError{
			Source: e.Name(),
			Detail: fmt.Sprintf("category term %q does not match the patch pattern", term),
		}
	}
	if cachedPatch, ok := patchVersion(cached); ok && patch == cachedPatch {
		return nil, nil
	}

	if err := cache.Save(ctx, e.cache, key, term, idTTL); err != nil {
		return nil, err
	}

	embed := &Embed{
		Color: 0x4EFBCB,
		Description: fmt.Sprintf("%s %s for %s %s has been rolled out!\n%s",
			entry.Categories[2], entry.Categories[3],
			entry.Categories[0], entry.Categories[1],
			HrefToMarkdown(entry.Description)),
		Timestamp:  entryTime(entry),
		AuthorName: parsed.Title,
		AuthorURL:  parsed.Link,
	}
	if parsed.Image != nil {
		embed.Thumbnail = parsed.Image.URL
	}

	return &Output{Kind: StandaloneEmbed, Embed: embed}, nil
}
