package feed

import (
	"regexp"
	"strings"
)

// Incident embed colors.
const (
	colorUpdate        = 0xABDD9E // Madang
	colorInvestigating = 0xA5CCE0 // French Pass
	colorMonitoring    = 0x81CBAD // Monte Carlo
	colorResolved      = 0x57F287 // Emerald
	colorDefault       = 0x81CBAD // Monte Carlo
)

var (
	patUpdate        = regexp.MustCompile(`(?i)\bupdate\b`)
	patInvestigating = regexp.MustCompile(`(?i)\binvestigating\b`)
	patMonitoring    = regexp.MustCompile(`(?i)\bmonitoring\b`)
	patResolved      = regexp.MustCompile(`(?i)\bresolved\b`)

	// Status pages prefix each update with a "Mar 02, 14:05 UTC" stamp.
	patTimestamp = regexp.MustCompile(`\b[A-Z][a-z]{2} \d{2}, \d{2}:\d{2} UTC\b`)
)

type severityRule struct {
	pattern *regexp.Regexp
	color   int
}

// firstSegment returns the first non-empty chronological segment of content,
// split on status-page timestamps. Falls back to the whole content.
func firstSegment(content string) string {
	for _, seg := range patTimestamp.Split(content, -1) {
		if s := strings.TrimSpace(seg); s != "" {
			return s
		}
	}
	return content
}

// classifyColor maps the newest chronological segment of content to an embed
// color. Rules are checked in precedence order; the first match wins.
func classifyColor(content string, rules []severityRule) int {
	seg := firstSegment(content)
	for _, r := range rules {
		if r.pattern.MatchString(seg) {
			return r.color
		}
	}
	return colorDefault
}

// Resolved reports whether content announces an incident resolution.
func Resolved(content string) bool {
	return patResolved.MatchString(content)
}
