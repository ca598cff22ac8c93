package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/ticker-news/app/ai"
	"github.com/lysyi3m/ticker-news/app/api"
	"github.com/lysyi3m/ticker-news/app/cfg"
	"github.com/lysyi3m/ticker-news/app/database"
	"github.com/lysyi3m/ticker-news/app/enrich"
	"github.com/lysyi3m/ticker-news/app/feed"
	"github.com/lysyi3m/ticker-news/app/news"
	"github.com/lysyi3m/ticker-news/app/tasks"
	"github.com/lysyi3m/ticker-news/app/watchlist"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Ticker News server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	articleRepo := database.NewArticleRepository(db)

	feedClient := &http.Client{Timeout: appCfg.FeedTimeout}
	aiClient := ai.NewClient(&http.Client{}, appCfg.AIEndpoint, appCfg.AIAPIKey, appCfg.AIModel)
	if !aiClient.Configured() {
		slog.Warn("AI API key not set, using keyword sentiment and template summaries")
	}

	enricher := enrich.NewEnricher(
		enrich.NewClassifier(aiClient, enrich.DefaultLexicon(), appCfg.AITimeout),
		enrich.NewSummarizer(aiClient, appCfg.AITimeout),
		appCfg.EnrichConcurrency,
	)

	newsService := news.NewService(
		articleRepo,
		feed.NewFetcher(feedClient, appCfg.FeedURL, appCfg.UserAgent, appCfg.FeedTimeout),
		feed.NewParser(),
		enricher,
		appCfg.FreshnessWindow,
		appCfg.MaxArticles,
	)

	tickerWatchlist := watchlist.NewWatchlist(appCfg.WatchlistFile)
	if err := tickerWatchlist.Run(); err != nil {
		slog.Error("Failed to load watchlist", "error", err)
		os.Exit(1)
	}

	if tickerWatchlist.GetTickerCount() > 0 {
		scheduler := tasks.NewScheduler(tickerWatchlist, newsService, appCfg.SchedulerInterval, appCfg.WorkerCount)
		scheduler.Start()
		defer scheduler.Stop()
		slog.Info("Watchlist refresh started", "tickers", tickerWatchlist.GetTickerCount(), "interval", appCfg.SchedulerInterval.String(), "workers", appCfg.WorkerCount)
	}

	handler := api.NewHandler(newsService, articleRepo, tickerWatchlist, appCfg.Version)
	router := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
