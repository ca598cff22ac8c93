package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/ticker-news/app/database"
	"github.com/lysyi3m/ticker-news/app/news"
	"github.com/lysyi3m/ticker-news/app/watchlist"
)

func NewHandler(newsService NewsServiceInterface, articleRepo database.ArticleRepositoryInterface,
	watchlist *watchlist.Watchlist, version string) *Handler {
	return &Handler{
		newsService: newsService,
		articleRepo: articleRepo,
		watchlist:   watchlist,
		version:     version,
	}
}

func (h *Handler) FetchNews(c *gin.Context) {
	var req FetchNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Debug("Invalid fetch-news body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.newsService.GetNews(c.Request.Context(), req.Ticker)
	if errors.Is(err, news.ErrTickerRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ticker is required"})
		return
	}
	if err != nil {
		slog.Error("Fetch news failed", "ticker", req.Ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if count, err := h.articleRepo.GetArticleCount(c.Request.Context()); err == nil {
		health["articles"] = count
	} else {
		slog.Error("Database error", "operation", "get_article_count", "error", err)
	}

	if h.watchlist != nil {
		health["watchlist_tickers"] = h.watchlist.GetTickerCount()
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.articleRepo.GetSentimentStats(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_sentiment_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"articles": stats.Total(),
		"sentiment": map[string]int{
			"bullish": stats.Bullish,
			"bearish": stats.Bearish,
			"neutral": stats.Neutral,
		},
	})
}
