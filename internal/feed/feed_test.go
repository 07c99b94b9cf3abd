package feed

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"feedwatch/internal/cache"
	"feedwatch/internal/fetcher"
)

// seqHTTP serves one body per call, repeating the last one once exhausted.
type seqHTTP struct {
	mu     sync.Mutex
	bodies []string
	calls  int
}

func (m *seqHTTP) Do(_ *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.calls
	if i >= len(m.bodies) {
		i = len(m.bodies) - 1
	}
	m.calls++
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(strings.NewReader(m.bodies[i])),
	}, nil
}

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testFetcher(bodies ...string) *fetcher.Fetcher {
	return fetcher.New(&seqHTTP{bodies: bodies})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func esxiXML(term string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Hypervisor Patch Feed</title>
    <link>https://patches.example.com</link>
    <description>Patch announcements</description>
    <image>
      <url>https://patches.example.com/logo.png</url>
      <title>Hypervisor Patch Feed</title>
      <link>https://patches.example.com</link>
    </image>
    <item>
      <title>ESXi 8.0 %[1]s</title>
      <link>https://patches.example.com/releases/latest</link>
      <guid>release-%[1]s</guid>
      <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
      <category>ESXi</category>
      <category>8.0</category>
      <category>Patch</category>
      <category>%[1]s</category>
      <description><![CDATA[Fixes listed in <a href="https://kb.example.com/1">the KB</a>]]></description>
    </item>
  </channel>
</rss>`, term)
}

func esxiXMLCategories(categories ...string) string {
	var cats strings.Builder
	for _, c := range categories {
		fmt.Fprintf(&cats, "<category>%s</category>", c)
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Hypervisor Patch Feed</title>
    <link>https://patches.example.com</link>
    <description>Patch announcements</description>
    <item>
      <title>Release</title>
      <link>https://patches.example.com/releases/latest</link>
      <guid>release-x</guid>
      %s
      <description>details</description>
    </item>
  </channel>
</rss>`, cats.String())
}

func statusXML(incidentID, title, contentHTML string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Service Status</title>
  <link href="https://status.example.com"/>
  <id>tag:status.example.com,2025:feed</id>
  <updated>2025-06-02T10:00:00Z</updated>
  <entry>
    <id>tag:status.example.com,2025:incident/%[1]s</id>
    <title>%[2]s</title>
    <link href="https://status.example.com/incidents/%[1]s"/>
    <updated>2025-06-02T10:00:00Z</updated>
    <content type="html"><![CDATA[%[3]s]]></content>
  </entry>
</feed>`, incidentID, title, contentHTML)
}

func emptyFeedXML() string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Service Status</title>
  <link href="https://status.example.com"/>
  <id>tag:status.example.com,2025:feed</id>
  <updated>2025-06-02T10:00:00Z</updated>
</feed>`
}

func rustXML(datePath, title string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Rust Blog</title>
  <link href="https://blog.rust-lang.org/"/>
  <id>tag:blog.rust-lang.org,2025:feed</id>
  <updated>2025-06-02T10:00:00Z</updated>
  <entry>
    <id>https://blog.rust-lang.org/%[1]s</id>
    <title>%[2]s</title>
    <link href="https://blog.rust-lang.org/%[1]s/"/>
    <updated>2025-06-02T10:00:00Z</updated>
  </entry>
</feed>`, datePath, title)
}
