package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/ticker-news/app/database"
	"github.com/lysyi3m/ticker-news/app/enrich"
	"github.com/lysyi3m/ticker-news/app/feed"
)

var ErrTickerRequired = errors.New("ticker is required")

type Service struct {
	repo        database.ArticleRepositoryInterface
	fetcher     FetcherInterface
	parser      ParserInterface
	enricher    EnricherInterface
	freshness   time.Duration
	maxArticles int
	now         func() time.Time
}

func NewService(repo database.ArticleRepositoryInterface, fetcher FetcherInterface, parser ParserInterface,
	enricher EnricherInterface, freshness time.Duration, maxArticles int) *Service {
	return &Service{
		repo:        repo,
		fetcher:     fetcher,
		parser:      parser,
		enricher:    enricher,
		freshness:   freshness,
		maxArticles: maxArticles,
		now:         time.Now,
	}
}

// NormalizeTicker trims and uppercases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// GetNews answers from the cache when it holds fresh rows for the ticker,
// otherwise scrapes, enriches and stores a new batch.
func (s *Service) GetNews(ctx context.Context, ticker string) (*Result, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrTickerRequired
	}

	now := s.now()

	cached, err := s.repo.GetFreshArticles(ctx, ticker, now.Add(-s.freshness))
	if err != nil {
		slog.Error("Database error", "operation", "get_fresh_articles", "ticker", ticker, "error", err)
	} else if len(cached) > 0 {
		slog.Debug("Serving cached news", "ticker", ticker, "articles", len(cached))
		return &Result{News: fromCache(cached, now), Cached: true}, nil
	}

	articles := s.scrape(ctx, ticker, now)
	enriched := s.enricher.Run(ctx, ticker, articles)

	// A cancelled caller gets no half-enriched batch stored or returned
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("news fetch for %s interrupted: %w", ticker, err)
	}

	s.persist(ctx, ticker, enriched, now)

	slog.Info("News fetched", "ticker", ticker, "articles", len(enriched))
	return &Result{News: fromEnriched(ticker, enriched, now), Cached: false}, nil
}

// scrape returns at most maxArticles parsed articles, or placeholders when
// the feed cannot be fetched or yields nothing.
func (s *Service) scrape(ctx context.Context, ticker string, now time.Time) []feed.Article {
	var articles []feed.Article

	data, err := s.fetcher.Fetch(ctx, ticker)
	if err != nil {
		slog.Warn("Feed fetch failed, using placeholders", "ticker", ticker, "error", err)
	} else {
		articles = s.parser.Run(data)
		if len(articles) == 0 {
			slog.Warn("Feed yielded no articles, using placeholders", "ticker", ticker)
		}
	}

	if len(articles) == 0 {
		articles = feed.Fallback(ticker, now)
	}

	if len(articles) > s.maxArticles {
		articles = articles[:s.maxArticles]
	}

	return articles
}

func (s *Service) persist(ctx context.Context, ticker string, articles []enrich.Article, now time.Time) {
	rows := make([]database.NewArticle, 0, len(articles))
	for _, a := range articles {
		publishedAt := a.PublishedAt
		if publishedAt == nil {
			publishedAt = &now
		}
		rows = append(rows, database.NewArticle{
			Headline:    a.Headline,
			Source:      a.Source,
			URL:         a.URL,
			Summary:     a.Summary,
			Sentiment:   string(a.Sentiment),
			PublishedAt: publishedAt,
			ScrapedAt:   now,
		})
	}

	written, err := s.repo.InsertArticles(ctx, ticker, rows)
	if err != nil {
		slog.Error("Database error", "operation", "insert_articles", "ticker", ticker, "error", err)
		return
	}

	slog.Debug("Articles cached", "ticker", ticker, "written", written, "total", len(rows))
}

func fromCache(rows []database.Article, now time.Time) []Article {
	result := make([]Article, 0, len(rows))
	for _, row := range rows {
		publishedAt := row.PublishedAt
		if publishedAt == nil {
			createdAt := row.CreatedAt
			publishedAt = &createdAt
		}
		result = append(result, Article{
			ID:        row.ID,
			Headline:  row.Headline,
			Source:    row.Source,
			Timestamp: FormatTimestamp(now, publishedAt),
			Summary:   row.Summary,
			Sentiment: row.Sentiment,
			URL:       row.URL,
		})
	}
	return result
}

func fromEnriched(ticker string, articles []enrich.Article, now time.Time) []Article {
	result := make([]Article, 0, len(articles))
	for i, a := range articles {
		result = append(result, Article{
			ID:        fmt.Sprintf("%s-%d", ticker, i),
			Headline:  a.Headline,
			Source:    a.Source,
			Timestamp: FormatTimestamp(now, a.PublishedAt),
			Summary:   a.Summary,
			Sentiment: string(a.Sentiment),
			URL:       a.URL,
		})
	}
	return result
}
