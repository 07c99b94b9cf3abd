package feed

import "regexp"

var (
	reAnchor    = regexp.MustCompile(`<a href="([^"]+)">([^<]+)</a>`)
	reParagraph = regexp.MustCompile(`</?\s*p\s*>`)
	reBreak     = regexp.MustCompile(`<\s*br\s*/?\s*>`)
	reStrong    = regexp.MustCompile(`</?\s*strong\s*>`)
	reSemantic  = regexp.MustCompile(`</?\s*(var|small)\s*>`)
	reTag       = regexp.MustCompile(`<[^>]+>`)
)

// HrefToMarkdown rewrites inline anchor tags to markdown links.
func HrefToMarkdown(s string) string {
	return reAnchor.ReplaceAllString(s, "[$2]($1)")
}

// HTMLToMarkdown normalizes raw feed HTML into Discord markdown: paragraph
// and line-break tags become newlines, <strong> becomes **, purely semantic
// tags are dropped, anchors become inline links, and any remaining tags are
// stripped. The result is stable under re-normalization, which the cached
// snapshot equality check depends on. Anchors are rewritten before the
// catch-all strip so links survive it.
func HTMLToMarkdown(s string) string {
	out := reParagraph.ReplaceAllString(s, "\n")
	out = reBreak.ReplaceAllString(out, "\n")
	out = reStrong.ReplaceAllString(out, "**")
	out = reSemantic.ReplaceAllString(out, "")
	out = HrefToMarkdown(out)
	return reTag.ReplaceAllString(out, "")
}

// MaxContentLength is the embed description budget.
const MaxContentLength = 4000

// TrimContent cuts s to MaxContentLength bytes. The cut is positional, not
// semantic.
func TrimContent(s string) string {
	if len(s) > MaxContentLength {
		return s[:MaxContentLength]
	}
	return s
}
