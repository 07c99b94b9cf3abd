package feed

import (
	"log/slog"

	"feedwatch/internal/cache"
	"feedwatch/internal/fetcher"
)

// NewGitHubStatus creates the GitHub status source. Its feed has no
// "monitoring" phase, so the precedence is update > investigating > resolved
// > default, and the embed links to the incident entry itself.
func NewGitHubStatus(url string, c cache.Cache, f *fetcher.Fetcher, log *slog.Logger) Source {
	return &statusPage{
		name:      "GitHub",
		url:       url,
		entryLink: true,
		rules: []severityRule{
			{patUpdate, colorUpdate},
			{patInvestigating, colorInvestigating},
			{patResolved, colorResolved},
		},
		cache:   c,
		fetcher: f,
		log:     log,
	}
}
