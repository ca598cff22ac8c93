package enrich

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/ticker-news/app/feed"
)

// Article is a feed article with a generated summary and a sentiment label.
type Article struct {
	feed.Article
	Sentiment Sentiment
}

type Enricher struct {
	classifier  *Classifier
	summarizer  *Summarizer
	concurrency int
}

func NewEnricher(classifier *Classifier, summarizer *Summarizer, concurrency int) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{
		classifier:  classifier,
		summarizer:  summarizer,
		concurrency: concurrency,
	}
}

// Run enriches every article, at most concurrency articles at a time.
// The result keeps input order and always has the same length.
func (e *Enricher) Run(ctx context.Context, ticker string, articles []feed.Article) []Article {
	startTime := time.Now()
	result := make([]Article, len(articles))

	indexChan := make(chan int, len(articles))
	for i := range articles {
		indexChan <- i
	}
	close(indexChan)

	workers := min(e.concurrency, len(articles))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexChan {
				result[i] = e.enrichOne(ctx, ticker, articles[i])
			}
		}()
	}
	wg.Wait()

	slog.Debug("Articles enriched", "ticker", ticker, "count", len(articles), "duration", time.Since(startTime))
	return result
}

// enrichOne runs sentiment and summary side by side. Sentiment reads the raw
// feed excerpt; the generated summary replaces it afterwards.
func (e *Enricher) enrichOne(ctx context.Context, ticker string, article feed.Article) Article {
	var (
		wg        sync.WaitGroup
		sentiment Sentiment
		summary   string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sentiment = e.classifier.Classify(ctx, article.Headline, article.Summary)
	}()
	go func() {
		defer wg.Done()
		summary = e.summarizer.Summarize(ctx, article.Headline, ticker)
	}()
	wg.Wait()

	enriched := Article{Article: article, Sentiment: sentiment}
	enriched.Summary = summary
	return enriched
}
