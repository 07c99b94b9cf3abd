package feed

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/mmcdole/gofeed"

	"feedwatch/internal/cache"
	"feedwatch/internal/fetcher"
)

var reIncidentID = regexp.MustCompile(`/incidents/([a-zA-Z0-9]+)$`)

func incidentID(link string) (string, bool) {
	caps := reIncidentID.FindStringSubmatch(link)
	if caps == nil {
		return "", false
	}
	return caps[1], true
}

// statusPage is the shared change detection for incident status feeds. The
// concrete sources differ only in name, URL, severity precedence, and which
// link the embed points at.
type statusPage struct {
	name  string
	url   string
	rules []severityRule

	// entryLink selects the newest entry's own link as the embed URL
	// instead of the feed's status-page link.
	entryLink bool

	cache   cache.Cache
	fetcher *fetcher.Fetcher
	log     *slog.Logger
}

func (s *statusPage) Name() string { return s.name }

func (s *statusPage) URL() string { return s.url }

func (s *statusPage) pageLink(f *gofeed.Feed, entry *gofeed.Item) string {
	if s.entryLink {
		return entry.Link
	}
	if f.Link != "" {
		return f.Link
	}
	return entry.Link
}

// Process emits an incident embed when a new incident appears or the current
// incident's normalized content changes.
func (s *statusPage) Process(ctx context.Context) (*Output, error) {
	parsed, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, err
	}

	entry, err := newestEntry(s.name, parsed)
	if err != nil {
		return nil, err
	}

	raw := entry.Content
	if raw == "" {
		raw = entry.Description
	}
	// Normalized before caching so snapshot equality is stable.
	content := HTMLToMarkdown(raw)

	id, ok := incidentID(entry.Link)
	if !ok {
		return nil, &ExtractionError{
			Source: s.name,
			Detail: fmt.Sprintf("incident link %q does not match the id pattern", entry.Link),
		}
	}

	key := CacheKey(s.name)
	cachedID, found, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		s.log.Debug("seeding cache", "source", s.name, "incident", id)
		if err := cache.Save(ctx, s.cache, key, id, idTTL); err != nil {
			return nil, err
		}
		return nil, cache.Save(ctx, s.cache, ContentKey(s.name), content, contentTTL)
	}

	if id == cachedID {
		cachedContent, _, err := s.cache.Get(ctx, ContentKey(s.name))
		if err != nil {
			return nil, err
		}
		if cachedContent == content {
			return nil, nil
		}
	}

	// New incident, or an in-place update to the current one. Identifier is
	// written before content.
	if err := cache.Save(ctx, s.cache, key, id, idTTL); err != nil {
		return nil, err
	}
	if err := cache.Save(ctx, s.cache, ContentKey(s.name), content, contentTTL); err != nil {
		return nil, err
	}

	return &Output{Kind: IncidentEmbed, Embed: &Embed{
		Color:       classifyColor(content, s.rules),
		Title:       entry.Title,
		URL:         s.pageLink(parsed, entry),
		Description: TrimContent(content),
		Timestamp:   entryTime(entry),
	}}, nil
}
