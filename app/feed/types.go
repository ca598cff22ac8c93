package feed

import (
	"time"
)

const (
	// MaxFeedItems caps how many feed items are considered per payload.
	MaxFeedItems = 20

	DefaultSource = "Financial News"
)

// Article is a normalized feed record before enrichment.
type Article struct {
	Headline    string
	Source      string
	URL         string
	Summary     string     // raw excerpt
	PublishedAt *time.Time // nil when the feed date is missing or unparseable
}

// rawItem is what item discovery hands to normalization. Description holds
// markup with one level of entity encoding already removed.
type rawItem struct {
	Title       string
	Description string
	Link        string
	PubDate     string
	Published   *time.Time
}
