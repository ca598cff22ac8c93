package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// RefreshTickerTask runs the news pipeline for one ticker. The service only
// scrapes when the cached batch is stale.
type RefreshTickerTask struct {
	Task
	newsService NewsServiceInterface
}

func NewRefreshTickerTask(ticker string, newsService NewsServiceInterface) *RefreshTickerTask {
	return &RefreshTickerTask{
		Task:        NewTask(TaskTypeRefreshTicker, ticker),
		newsService: newsService,
	}
}

func (t *RefreshTickerTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.newsService.GetNews(ctx, t.Ticker)
	if err != nil {
		return fmt.Errorf("failed to refresh %s: %w", t.Ticker, err)
	}

	slog.Debug("Ticker refreshed", "ticker", t.Ticker, "articles", len(result.News), "cached", result.Cached)
	return nil
}
