package news

import (
	"context"

	"github.com/lysyi3m/ticker-news/app/enrich"
	"github.com/lysyi3m/ticker-news/app/feed"
)

// Article is one record of the fetch-news response.
type Article struct {
	ID        string `json:"id"`
	Headline  string `json:"headline"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
	URL       string `json:"url"`
}

type Result struct {
	News   []Article `json:"news"`
	Cached bool      `json:"cached"`
}

type FetcherInterface interface {
	Fetch(ctx context.Context, ticker string) ([]byte, error)
}

type ParserInterface interface {
	Run(data []byte) []feed.Article
}

type EnricherInterface interface {
	Run(ctx context.Context, ticker string, articles []feed.Article) []enrich.Article
}

var (
	_ FetcherInterface  = (*feed.Fetcher)(nil)
	_ ParserInterface   = (*feed.Parser)(nil)
	_ EnricherInterface = (*enrich.Enricher)(nil)
)
