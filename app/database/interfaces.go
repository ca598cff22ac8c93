package database

import (
	"context"
	"time"
)

// ArticleRepositoryInterface is what the news service needs from the cache store.
type ArticleRepositoryInterface interface {
	GetFreshArticles(ctx context.Context, ticker string, since time.Time) ([]Article, error)
	GetArticleCount(ctx context.Context) (int, error)
	GetSentimentStats(ctx context.Context) (SentimentStats, error)

	InsertArticles(ctx context.Context, ticker string, articles []NewArticle) (int, error)
}
