package enrich

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lysyi3m/ticker-news/app/ai"
	"github.com/lysyi3m/ticker-news/app/feed"
)

func testArticles(n int) []feed.Article {
	articles := make([]feed.Article, n)
	for i := range articles {
		articles[i] = feed.Article{
			Headline: fmt.Sprintf("Headline %d", i),
			Source:   "Reuters",
			URL:      fmt.Sprintf("https://www.example.com/%d", i),
			Summary:  "raw excerpt",
		}
	}
	return articles
}

func TestEnricherRunKeepsOrderAndReplacesSummary(t *testing.T) {
	completer := &fakeCompleter{sentiment: "bullish", summary: "Generated summary."}
	enricher := NewEnricher(
		NewClassifier(completer, DefaultLexicon(), time.Second),
		NewSummarizer(completer, time.Second),
		3,
	)

	articles := testArticles(7)
	result := enricher.Run(context.Background(), "AAPL", articles)

	if len(result) != len(articles) {
		t.Fatalf("Expected %d results, got %d", len(articles), len(result))
	}
	for i, a := range result {
		if a.Headline != articles[i].Headline {
			t.Errorf("Result %d: expected headline %q, got %q", i, articles[i].Headline, a.Headline)
		}
		if a.Summary != "Generated summary." {
			t.Errorf("Result %d: expected generated summary, got %q", i, a.Summary)
		}
		if a.Sentiment != Bullish {
			t.Errorf("Result %d: expected bullish, got %s", i, a.Sentiment)
		}
	}

	if calls := completer.calls.Load(); calls != 14 {
		t.Errorf("Expected 14 model calls, got %d", calls)
	}
}

func TestEnricherRunBoundsConcurrency(t *testing.T) {
	completer := &fakeCompleter{sentiment: "neutral", summary: "ok", delay: 20 * time.Millisecond}
	enricher := NewEnricher(
		NewClassifier(completer, DefaultLexicon(), time.Second),
		NewSummarizer(completer, time.Second),
		2,
	)

	enricher.Run(context.Background(), "AAPL", testArticles(10))

	// Two articles at a time, two calls per article.
	if peak := completer.maxInFlight.Load(); peak > 4 {
		t.Errorf("Expected at most 4 calls in flight, got %d", peak)
	}
}

func TestEnricherRunWithoutKey(t *testing.T) {
	completer := &fakeCompleter{err: ai.ErrNotConfigured}
	enricher := NewEnricher(
		NewClassifier(completer, DefaultLexicon(), time.Second),
		NewSummarizer(completer, time.Second),
		10,
	)

	articles := []feed.Article{{Headline: "Nvidia shares surge", URL: "https://www.example.com/n", Summary: "record profit"}}
	result := enricher.Run(context.Background(), "NVDA", articles)

	if result[0].Sentiment != Bullish {
		t.Errorf("Expected lexicon bullish, got %s", result[0].Sentiment)
	}
	if result[0].Summary != "Analysis of NVDA stock news: Nvidia shares surge" {
		t.Errorf("Unexpected summary: %q", result[0].Summary)
	}
}

func TestEnricherRunEmpty(t *testing.T) {
	enricher := NewEnricher(
		NewClassifier(&fakeCompleter{}, DefaultLexicon(), time.Second),
		NewSummarizer(&fakeCompleter{}, time.Second),
		0,
	)
	if result := enricher.Run(context.Background(), "AAPL", nil); len(result) != 0 {
		t.Errorf("Expected no results, got %d", len(result))
	}
}
