package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/ticker-news.db" description:"SQLite database file"`

	// HTTP server
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key required by /fetch-news (optional)"`

	// News feed
	FeedURL     string `long:"feed-url" env:"FEED_URL" default:"https://news.google.com/rss/search" description:"RSS search endpoint"`
	FeedTimeout int    `long:"feed-timeout" env:"FEED_TIMEOUT" default:"15" description:"Feed request timeout in seconds"`
	UserAgent   string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36" description:"User agent string for feed requests"`

	// AI gateway
	AIEndpoint string `long:"ai-endpoint" env:"AI_ENDPOINT" default:"https://ai.gateway.lovable.dev/v1/chat/completions" description:"Chat completions endpoint"`
	AIModel    string `long:"ai-model" env:"AI_MODEL" default:"google/gemini-2.5-flash" description:"Model used for sentiment and summaries"`
	AIAPIKey   string `long:"ai-api-key" env:"AI_API_KEY" description:"Bearer credential for the AI endpoint (heuristics are used when empty)"`
	AITimeout  int    `long:"ai-timeout" env:"AI_TIMEOUT" default:"20" description:"Deadline for a single AI call in seconds"`

	// Ingestion
	FreshnessWindow   int `long:"freshness-window" env:"FRESHNESS_WINDOW" default:"300" description:"Seconds a cached result is reused before re-scraping"`
	MaxArticles       int `long:"max-articles" env:"MAX_ARTICLES" default:"10" description:"Maximum articles enriched per request"`
	EnrichConcurrency int `long:"enrich-concurrency" env:"ENRICH_CONCURRENCY" default:"10" description:"Articles enriched in parallel"`

	// Watchlist prefetch
	WatchlistFile     string `long:"watchlist" env:"WATCHLIST_FILE" description:"YAML file with tickers to keep warm (optional)"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for watchlist refreshes"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args. A nil slice means os.Args.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, err
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		FeedURL:           raw.FeedURL,
		FeedTimeout:       time.Duration(raw.FeedTimeout) * time.Second,
		UserAgent:         raw.UserAgent,
		AIEndpoint:        raw.AIEndpoint,
		AIModel:           raw.AIModel,
		AIAPIKey:          raw.AIAPIKey,
		AITimeout:         time.Duration(raw.AITimeout) * time.Second,
		FreshnessWindow:   time.Duration(raw.FreshnessWindow) * time.Second,
		MaxArticles:       raw.MaxArticles,
		EnrichConcurrency: raw.EnrichConcurrency,
		WatchlistFile:     raw.WatchlistFile,
		SchedulerInterval: time.Duration(raw.SchedulerInterval) * time.Second,
		WorkerCount:       raw.WorkerCount,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func validate(raw *rawCfg) error {
	positiveFields := map[string]int{
		"feed timeout":       raw.FeedTimeout,
		"ai timeout":         raw.AITimeout,
		"max articles":       raw.MaxArticles,
		"enrich concurrency": raw.EnrichConcurrency,
		"scheduler interval": raw.SchedulerInterval,
		"worker count":       raw.WorkerCount,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if raw.FreshnessWindow < 0 {
		return fmt.Errorf("freshness window must be non-negative")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
