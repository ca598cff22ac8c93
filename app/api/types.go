package api

import (
	"context"

	"github.com/lysyi3m/ticker-news/app/database"
	"github.com/lysyi3m/ticker-news/app/news"
	"github.com/lysyi3m/ticker-news/app/watchlist"
)

type NewsServiceInterface interface {
	GetNews(ctx context.Context, ticker string) (*news.Result, error)
}

var _ NewsServiceInterface = (*news.Service)(nil)

type FetchNewsRequest struct {
	Ticker string `json:"ticker"`
}

type Handler struct {
	newsService NewsServiceInterface
	articleRepo database.ArticleRepositoryInterface
	watchlist   *watchlist.Watchlist
	version     string
}
