package tasks

import (
	"context"

	"github.com/lysyi3m/ticker-news/app/news"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to keep watchlist tickers warm in the cache.
//
//	scheduler := NewScheduler(watchlist, newsService, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

type NewsServiceInterface interface {
	GetNews(ctx context.Context, ticker string) (*news.Result, error)
}

var _ NewsServiceInterface = (*news.Service)(nil)
