package feed

import (
	"log/slog"

	"feedwatch/internal/cache"
	"feedwatch/internal/fetcher"
)

// NewGPortal creates the G-Portal hosting status source. Severity precedence:
// update > investigating > monitoring > resolved > default.
func NewGPortal(url string, c cache.Cache, f *fetcher.Fetcher, log *slog.Logger) Source {
	return &statusPage{
		name: "GPortal",
		url:  url,
		rules: []severityRule{
			{patUpdate, colorUpdate},
			{patInvestigating, colorInvestigating},
			{patMonitoring, colorMonitoring},
			{patResolved, colorResolved},
		},
		cache:   c,
		fetcher: f,
		log:     log,
	}
}
