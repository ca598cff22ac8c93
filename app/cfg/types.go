package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath string

	// HTTP server
	Port         string
	APIAccessKey string

	// News feed
	FeedURL     string
	FeedTimeout time.Duration
	UserAgent   string

	// AI gateway
	AIEndpoint string
	AIModel    string
	AIAPIKey   string
	AITimeout  time.Duration

	// Ingestion
	FreshnessWindow   time.Duration
	MaxArticles       int
	EnrichConcurrency int

	// Watchlist prefetch
	WatchlistFile     string
	SchedulerInterval time.Duration
	WorkerCount       int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
