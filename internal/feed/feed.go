// Package feed implements the monitored sources and their change detection.
//
// Each source fetches its feed, extracts a stable identifier from the newest
// entry, compares it (and, for incident sources, a normalized content
// snapshot) against cached state, and emits a rendered output only when
// something actually changed. Only the newest entry is consulted; a source
// publishing twice between polls loses the older change.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// OutputKind selects how a rendered change is delivered.
type OutputKind int

const (
	// StandaloneEmbed is always posted fresh and never edited.
	StandaloneEmbed OutputKind = iota
	// IncidentEmbed is posted once, then edited in place while the same
	// incident id stays cached.
	IncidentEmbed
	// PlainText is a short announcement string without an embed.
	PlainText
)

// Embed is the transport-agnostic embed handed to the delivery layer.
type Embed struct {
	Color       int
	Title       string
	URL         string
	Description string
	Timestamp   time.Time
	AuthorName  string
	AuthorURL   string
	Thumbnail   string
}

// Output is a rendered change produced by a source.
type Output struct {
	Kind  OutputKind
	Embed *Embed
	Text  string
}

// Source is one monitored feed.
type Source interface {
	Name() string
	URL() string

	// Process fetches the feed, runs change detection against the cache and
	// returns a rendered output, or nil when nothing changed.
	Process(ctx context.Context) (*Output, error)
}

// Cache TTLs. Stale entries self-heal through expiry: a missed resolution
// notice clears itself once the identifier lapses.
const (
	idTTL      = 7200 * time.Second
	contentTTL = 21600 * time.Second
)

// ExtractionError reports feed content that does not match a source's
// expected shape. It is recoverable: cache state stays untouched and the
// source may self-correct by the next tick.
type ExtractionError struct {
	Source string
	Detail string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Detail)
}

// CacheKey returns the namespaced identifier key for a source.
func CacheKey(name string) string { return "RSS_" + name }

// ContentKey returns the content-snapshot key for a source.
func ContentKey(name string) string { return CacheKey(name) + "_Content" }

// MsgIDKey returns the message-slot key for a source.
func MsgIDKey(name string) string { return CacheKey(name) + "_MsgId" }

func newestEntry(source string, f *gofeed.Feed) (*gofeed.Item, error) {
	if len(f.Items) == 0 {
		return nil, &ExtractionError{Source: source, Detail: "no entries found in the feed"}
	}
	return f.Items[0], nil
}

func entryTime(item *gofeed.Item) time.Time {
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	return time.Now().UTC()
}
