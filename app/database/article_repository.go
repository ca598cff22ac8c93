package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ArticleRepository handles database operations for cached news articles
type ArticleRepository struct {
	db *DB
	now func() time.Time
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *DB) *ArticleRepository {
	return &ArticleRepository{db: db, now: time.Now}
}

// GetFreshArticles returns the articles for ticker scraped at or after since,
// newest publication first with undated rows last.
func (r *ArticleRepository) GetFreshArticles(ctx context.Context, ticker string, since time.Time) ([]Article, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ticker, headline, source, url, summary, sentiment, published_at, scraped_at, created_at
		FROM news_articles
		WHERE ticker = ? AND scraped_at >= ?
		ORDER BY published_at DESC NULLS LAST, created_at ASC
	`, ticker, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query fresh articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return articles, nil
}

// InsertArticles stores articles for ticker in one transaction. Rows whose
// (ticker, url) already exist keep their content and only get scraped_at
// refreshed. Returns the number of rows written.
func (r *ArticleRepository) InsertArticles(ctx context.Context, ticker string, articles []NewArticle) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO news_articles (id, ticker, headline, source, url, summary, sentiment, published_at, scraped_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker, url) DO UPDATE SET scraped_at = excluded.scraped_at
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	createdAt := formatTime(r.now())
	written := 0

	for _, a := range articles {
		var publishedAt sql.NullString
		if a.PublishedAt != nil {
			publishedAt = sql.NullString{String: formatTime(*a.PublishedAt), Valid: true}
		}

		res, err := stmt.ExecContext(ctx,
			uuid.NewString(), ticker, a.Headline, a.Source, a.URL, a.Summary, a.Sentiment,
			publishedAt, formatTime(a.ScrapedAt), createdAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert article %s: %w", a.URL, err)
		}

		if n, err := res.RowsAffected(); err == nil {
			written += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit articles: %w", err)
	}

	return written, nil
}

// GetArticleCount returns the total number of cached articles
func (r *ArticleRepository) GetArticleCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news_articles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

// GetSentimentStats returns cached article totals per sentiment label
func (r *ArticleRepository) GetSentimentStats(ctx context.Context) (SentimentStats, error) {
	var stats SentimentStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN sentiment = 'bullish' THEN 1 END),
			COUNT(CASE WHEN sentiment = 'bearish' THEN 1 END),
			COUNT(CASE WHEN sentiment = 'neutral' THEN 1 END)
		FROM news_articles
	`).Scan(&stats.Bullish, &stats.Bearish, &stats.Neutral)
	if err != nil {
		return SentimentStats{}, fmt.Errorf("failed to get sentiment stats: %w", err)
	}
	return stats, nil
}

func scanArticle(rows *sql.Rows) (Article, error) {
	var (
		a           Article
		publishedAt sql.NullString
		scrapedAt   string
		createdAt   string
	)

	err := rows.Scan(&a.ID, &a.Ticker, &a.Headline, &a.Source, &a.URL, &a.Summary, &a.Sentiment,
		&publishedAt, &scrapedAt, &createdAt)
	if err != nil {
		return Article{}, fmt.Errorf("failed to scan article: %w", err)
	}

	if publishedAt.Valid {
		t, err := parseTime(publishedAt.String)
		if err != nil {
			return Article{}, err
		}
		a.PublishedAt = &t
	}

	if a.ScrapedAt, err = parseTime(scrapedAt); err != nil {
		return Article{}, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return Article{}, err
	}

	return a, nil
}
