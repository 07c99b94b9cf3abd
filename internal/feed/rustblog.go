package feed

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"feedwatch/internal/cache"
	"feedwatch/internal/fetcher"
)

// RustBlog watches the Rust release blog and announces new posts as plain
// text. Only the identifier (the dated article path) is tracked.
type RustBlog struct {
	url     string
	cache   cache.Cache
	fetcher *fetcher.Fetcher
	log     *slog.Logger
}

// NewRustBlog creates the Rust blog announcement source.
func NewRustBlog(url string, c cache.Cache, f *fetcher.Fetcher, log *slog.Logger) *RustBlog {
	return &RustBlog{url: url, cache: c, fetcher: f, log: log}
}

// Name returns the source name used to namespace cache keys.
func (r *RustBlog) Name() string { return "RustBlog" }

// URL returns the feed URL.
func (r *RustBlog) URL() string { return r.url }

var reBlogPath = regexp.MustCompile(`https://blog\.rust-lang\.org/(\d{4}/\d{2}/\d{2}/[^/]+)`)

func blogPath(id string) (string, bool) {
	caps := reBlogPath.FindStringSubmatch(id)
	if caps == nil {
		return "", false
	}
	return caps[1], true
}

// Process announces an article when the newest entry's path differs from the
// cached one.
func (r *RustBlog) Process(ctx context.Context) (*Output, error) {
	parsed, err := r.fetcher.Fetch(ctx, r.url)
	if err != nil {
		return nil, err
	}

	entry, err := newestEntry(r.Name(), parsed)
	if err != nil {
		return nil, err
	}

	path, ok := blogPath(entry.GUID)
	if !ok {
		return nil, &ExtractionError{
			Source: r.Name(),
			Detail: fmt.Sprintf("article id %q does not match the blog path pattern", entry.GUID),
		}
	}

	key := CacheKey(r.Name())
	cached, found, err := r.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		r.log.Debug("seeding cache", "source", r.Name(), "path", path)
		return nil, cache.Save(ctx, r.cache, key, path, idTTL)
	}

	if path == cached {
		return nil, nil
	}

	if err := cache.Save(ctx, r.cache, key, path, idTTL); err != nil {
		return nil, err
	}

	return &Output{
		Kind: PlainText,
		Text: fmt.Sprintf("Rust Team has put out a new article!\n**[%s](<%s>)**", entry.Title, entry.Link),
	}, nil
}
