package database

import (
	"time"
)

// Article is a cached news_articles row.
type Article struct {
	ID          string // Database UUID
	Ticker      string // Uppercase
	Headline    string
	Source      string
	URL         string
	Summary     string
	Sentiment   string // bullish, bearish or neutral
	PublishedAt *time.Time
	ScrapedAt   time.Time
	CreatedAt   time.Time
}

// NewArticle is an enriched article ready to be cached.
type NewArticle struct {
	Headline    string
	Source      string
	URL         string
	Summary     string
	Sentiment   string
	PublishedAt *time.Time
	ScrapedAt   time.Time
}

type SentimentStats struct {
	Bullish int
	Bearish int
	Neutral int
}

func (s SentimentStats) Total() int {
	return s.Bullish + s.Bearish + s.Neutral
}
