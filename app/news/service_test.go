package news

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lysyi3m/ticker-news/app/ai"
	"github.com/lysyi3m/ticker-news/app/database"
	"github.com/lysyi3m/ticker-news/app/enrich"
	"github.com/lysyi3m/ticker-news/app/feed"
)

// fakeRepo mirrors the store's insert in memory: a known (ticker, url) only
// gets its scraped time refreshed.
type fakeRepo struct {
	mu        sync.Mutex
	rows      []database.Article
	getErr    error
	insertErr error
	reads     int
}

func (r *fakeRepo) GetFreshArticles(ctx context.Context, ticker string, since time.Time) ([]database.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++

	if r.getErr != nil {
		return nil, r.getErr
	}

	var result []database.Article
	for _, row := range r.rows {
		if row.Ticker == ticker && !row.ScrapedAt.Before(since) {
			result = append(result, row)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].PublishedAt, result[j].PublishedAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
	return result, nil
}

func (r *fakeRepo) InsertArticles(ctx context.Context, ticker string, articles []database.NewArticle) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.insertErr != nil {
		return 0, r.insertErr
	}

	written := 0
	for _, a := range articles {
		if i := r.find(ticker, a.URL); i >= 0 {
			r.rows[i].ScrapedAt = a.ScrapedAt
			written++
			continue
		}
		r.rows = append(r.rows, database.Article{
			ID:          fmt.Sprintf("row-%d", len(r.rows)),
			Ticker:      ticker,
			Headline:    a.Headline,
			Source:      a.Source,
			URL:         a.URL,
			Summary:     a.Summary,
			Sentiment:   a.Sentiment,
			PublishedAt: a.PublishedAt,
			ScrapedAt:   a.ScrapedAt,
			CreatedAt:   a.ScrapedAt,
		})
		written++
	}
	return written, nil
}

func (r *fakeRepo) find(ticker, url string) int {
	for i, row := range r.rows {
		if row.Ticker == ticker && row.URL == url {
			return i
		}
	}
	return -1
}

func (r *fakeRepo) GetArticleCount(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows), nil
}

func (r *fakeRepo) GetSentimentStats(ctx context.Context) (database.SentimentStats, error) {
	return database.SentimentStats{}, nil
}

type fakeFetcher struct {
	data    []byte
	err     error
	calls   atomic.Int32
	tickers []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, ticker string) ([]byte, error) {
	f.calls.Add(1)
	f.tickers = append(f.tickers, ticker)
	return f.data, f.err
}

type fakeCompleter struct {
	calls atomic.Int32
}

func (f *fakeCompleter) Complete(ctx context.Context, r ai.Request) (string, error) {
	f.calls.Add(1)
	return "", ai.ErrNotConfigured
}

type testEnv struct {
	service   *Service
	repo      *fakeRepo
	fetcher   *fakeFetcher
	completer *fakeCompleter
	clock     time.Time
}

func newTestEnv(t *testing.T, data []byte) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:      &fakeRepo{},
		fetcher:   &fakeFetcher{data: data},
		completer: &fakeCompleter{},
		clock:     time.Date(2025, 10, 7, 15, 0, 0, 0, time.UTC),
	}

	enricher := enrich.NewEnricher(
		enrich.NewClassifier(env.completer, enrich.DefaultLexicon(), time.Second),
		enrich.NewSummarizer(env.completer, time.Second),
		10,
	)

	env.service = NewService(env.repo, env.fetcher, feed.NewParser(), enricher, 5*time.Minute, 10)
	env.service.now = func() time.Time { return env.clock }

	return env
}

func rssWithItems(n int, withDates bool) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>News</title>`)
	for i := 0; i < n; i++ {
		b.WriteString("<item>")
		fmt.Fprintf(&b, "<title>Story %d</title><link>https://www.example.com/story-%d</link>", i, i)
		if withDates {
			fmt.Fprintf(&b, "<pubDate>Tue, 07 Oct 2025 %02d:00:00 GMT</pubDate>", 14-i)
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return []byte(b.String())
}

func validSentiment(s string) bool {
	_, ok := enrich.ParseSentiment(s)
	return ok && s == strings.ToLower(s)
}

func TestGetNewsEmptyFeedUsesPlaceholders(t *testing.T) {
	env := newTestEnv(t, []byte{})

	result, err := env.service.GetNews(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Cached {
		t.Error("Expected fresh result")
	}
	if len(result.News) != 3 {
		t.Fatalf("Expected 3 placeholder articles, got %d", len(result.News))
	}

	expectedSources := []string{"Market Watch", "Bloomberg", "CNBC"}
	expectedTimestamps := []string{"2 hours ago", "5 hours ago", "1 day ago"}

	for i, article := range result.News {
		if article.ID != fmt.Sprintf("TSLA-%d", i) {
			t.Errorf("Article %d: unexpected id %q", i, article.ID)
		}
		if article.Source != expectedSources[i] {
			t.Errorf("Article %d: expected source %q, got %q", i, expectedSources[i], article.Source)
		}
		if article.Timestamp != expectedTimestamps[i] {
			t.Errorf("Article %d: expected timestamp %q, got %q", i, expectedTimestamps[i], article.Timestamp)
		}
		if !validSentiment(article.Sentiment) {
			t.Errorf("Article %d: invalid sentiment %q", i, article.Sentiment)
		}
		expectedSummary := "Analysis of TSLA stock news: " + article.Headline
		if article.Summary != expectedSummary {
			t.Errorf("Article %d: expected summary %q, got %q", i, expectedSummary, article.Summary)
		}
	}

	if count, _ := env.repo.GetArticleCount(context.Background()); count != 3 {
		t.Errorf("Expected 3 cached rows, got %d", count)
	}
}

func TestGetNewsSecondRequestIsCached(t *testing.T) {
	env := newTestEnv(t, []byte{})
	ctx := context.Background()

	first, err := env.service.GetNews(ctx, "TSLA")
	if err != nil {
		t.Fatalf("First request failed: %v", err)
	}

	fetches := env.fetcher.calls.Load()
	completions := env.completer.calls.Load()

	env.clock = env.clock.Add(time.Minute)
	second, err := env.service.GetNews(ctx, " tsla ")
	if err != nil {
		t.Fatalf("Second request failed: %v", err)
	}

	if !second.Cached {
		t.Error("Expected cached result")
	}
	if env.fetcher.calls.Load() != fetches {
		t.Error("Expected no feed fetch for a cached request")
	}
	if env.completer.calls.Load() != completions {
		t.Error("Expected no model calls for a cached request")
	}

	if len(second.News) != len(first.News) {
		t.Fatalf("Expected %d cached articles, got %d", len(first.News), len(second.News))
	}
	for i := range second.News {
		if second.News[i].Headline != first.News[i].Headline {
			t.Errorf("Article %d: expected headline %q, got %q", i, first.News[i].Headline, second.News[i].Headline)
		}
		if !strings.HasPrefix(second.News[i].ID, "row-") {
			t.Errorf("Article %d: expected stored id, got %q", i, second.News[i].ID)
		}
	}
	if second.News[0].Timestamp != "2 hours ago" {
		t.Errorf("Expected timestamp recomputed at response time, got %q", second.News[0].Timestamp)
	}
}

func TestGetNewsStaleCacheScrapesAgain(t *testing.T) {
	env := newTestEnv(t, rssWithItems(2, true))
	ctx := context.Background()

	if _, err := env.service.GetNews(ctx, "AAPL"); err != nil {
		t.Fatalf("First request failed: %v", err)
	}

	env.clock = env.clock.Add(6 * time.Minute)
	result, err := env.service.GetNews(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Second request failed: %v", err)
	}

	if result.Cached {
		t.Error("Expected a fresh result after the window expired")
	}
	if env.fetcher.calls.Load() != 2 {
		t.Errorf("Expected 2 fetches, got %d", env.fetcher.calls.Load())
	}
	if count, _ := env.repo.GetArticleCount(ctx); count != 2 {
		t.Errorf("Expected conflicting rows to be reused, got %d rows", count)
	}
}

func TestGetNewsRequiresTicker(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, ticker := range []string{"", "   "} {
		_, err := env.service.GetNews(context.Background(), ticker)
		if !errors.Is(err, ErrTickerRequired) {
			t.Errorf("GetNews(%q): expected ErrTickerRequired, got %v", ticker, err)
		}
	}

	if env.fetcher.calls.Load() != 0 || env.repo.reads != 0 {
		t.Error("Expected no fetch or cache read for an invalid ticker")
	}
}

func TestGetNewsUppercasesTicker(t *testing.T) {
	env := newTestEnv(t, rssWithItems(1, true))

	result, err := env.service.GetNews(context.Background(), " nvda ")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if env.fetcher.tickers[0] != "NVDA" {
		t.Errorf("Expected fetch for NVDA, got %q", env.fetcher.tickers[0])
	}
	if result.News[0].ID != "NVDA-0" {
		t.Errorf("Expected id NVDA-0, got %q", result.News[0].ID)
	}
	if env.repo.rows[0].Ticker != "NVDA" {
		t.Errorf("Expected stored ticker NVDA, got %q", env.repo.rows[0].Ticker)
	}
}

func TestGetNewsCapsArticleCount(t *testing.T) {
	env := newTestEnv(t, rssWithItems(15, false))

	result, err := env.service.GetNews(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(result.News) != 10 {
		t.Errorf("Expected 10 articles, got %d", len(result.News))
	}
	if result.News[0].Headline != "Story 0" {
		t.Errorf("Expected feed order, got %q", result.News[0].Headline)
	}
}

func TestGetNewsDefaultsPublishedAtOnPersist(t *testing.T) {
	env := newTestEnv(t, rssWithItems(1, false))

	result, err := env.service.GetNews(context.Background(), "AMD")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.News[0].Timestamp != "Just now" {
		t.Errorf("Expected 'Just now' for an undated article, got %q", result.News[0].Timestamp)
	}

	row := env.repo.rows[0]
	if row.PublishedAt == nil || !row.PublishedAt.Equal(env.clock) {
		t.Errorf("Expected stored published time %v, got %v", env.clock, row.PublishedAt)
	}
}

func TestGetNewsFetchErrorUsesPlaceholders(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fetcher.err = errors.New("connection refused")

	result, err := env.service.GetNews(context.Background(), "GOOG")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(result.News) != 3 {
		t.Errorf("Expected 3 placeholder articles, got %d", len(result.News))
	}
	if result.News[0].URL != "https://www.marketwatch.com/goog" {
		t.Errorf("Unexpected placeholder URL: %s", result.News[0].URL)
	}
}

func TestGetNewsStoreFailuresAreSoft(t *testing.T) {
	env := newTestEnv(t, rssWithItems(2, true))
	env.repo.getErr = errors.New("database is locked")
	env.repo.insertErr = errors.New("disk full")

	result, err := env.service.GetNews(context.Background(), "META")
	if err != nil {
		t.Fatalf("Expected store failures to be absorbed, got: %v", err)
	}
	if result.Cached {
		t.Error("Expected a fresh result when the cache read fails")
	}
	if len(result.News) != 2 {
		t.Errorf("Expected 2 articles, got %d", len(result.News))
	}
}

func TestGetNewsRescrapeRefreshesCache(t *testing.T) {
	env := newTestEnv(t, rssWithItems(3, true))
	ctx := context.Background()

	if _, err := env.service.GetNews(ctx, "AAPL"); err != nil {
		t.Fatalf("First request failed: %v", err)
	}

	env.clock = env.clock.Add(6 * time.Minute)
	if result, err := env.service.GetNews(ctx, "AAPL"); err != nil || result.Cached {
		t.Fatalf("Expected a fresh scrape after the window expired, got cached=%v err=%v", result != nil && result.Cached, err)
	}

	completions := env.completer.calls.Load()

	env.clock = env.clock.Add(time.Minute)
	result, err := env.service.GetNews(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Third request failed: %v", err)
	}

	if !result.Cached {
		t.Error("Expected the unchanged feed to be served from cache after a re-scrape")
	}
	if len(result.News) != 3 {
		t.Errorf("Expected 3 cached articles, got %d", len(result.News))
	}
	if env.fetcher.calls.Load() != 2 {
		t.Errorf("Expected 2 fetches, got %d", env.fetcher.calls.Load())
	}
	if env.completer.calls.Load() != completions {
		t.Error("Expected no model calls for a cached request")
	}
}

func TestGetNewsRescrapeWithOverlapCachesWholeBatch(t *testing.T) {
	env := newTestEnv(t, rssWithItems(3, true))
	ctx := context.Background()

	if _, err := env.service.GetNews(ctx, "AAPL"); err != nil {
		t.Fatalf("First request failed: %v", err)
	}

	env.clock = env.clock.Add(6 * time.Minute)
	env.fetcher.data = rssWithItems(5, true)

	fresh, err := env.service.GetNews(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Second request failed: %v", err)
	}
	if len(fresh.News) != 5 {
		t.Fatalf("Expected 5 fresh articles, got %d", len(fresh.News))
	}

	env.clock = env.clock.Add(time.Minute)
	cached, err := env.service.GetNews(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Third request failed: %v", err)
	}

	if !cached.Cached {
		t.Error("Expected cached result")
	}
	if len(cached.News) != 5 {
		t.Fatalf("Expected 5 cached articles, got %d", len(cached.News))
	}
	for i := range cached.News {
		if cached.News[i].Headline != fresh.News[i].Headline {
			t.Errorf("Article %d: expected headline %q, got %q", i, fresh.News[i].Headline, cached.News[i].Headline)
		}
	}
}

func TestGetNewsCancelledContext(t *testing.T) {
	env := newTestEnv(t, rssWithItems(2, true))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := env.service.GetNews(ctx, "AAPL")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got result=%v err=%v", result, err)
	}
	if count, _ := env.repo.GetArticleCount(context.Background()); count != 0 {
		t.Errorf("Expected nothing stored for a cancelled request, got %d rows", count)
	}
}

func TestGetNewsCachedRowWithoutPublishedTime(t *testing.T) {
	env := newTestEnv(t, nil)
	env.repo.rows = []database.Article{{
		ID:        "row-0",
		Ticker:    "IBM",
		Headline:  "Undated story",
		Source:    "Reuters",
		URL:       "https://example.com/undated",
		Summary:   "Undated story",
		Sentiment: "neutral",
		ScrapedAt: env.clock.Add(-time.Minute),
		CreatedAt: env.clock.Add(-3 * time.Hour),
	}}

	result, err := env.service.GetNews(context.Background(), "IBM")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.Cached || len(result.News) != 1 {
		t.Fatalf("Expected 1 cached article, got cached=%v len=%d", result.Cached, len(result.News))
	}
	if result.News[0].Timestamp != "3 hours ago" {
		t.Errorf("Expected timestamp from creation time, got %q", result.News[0].Timestamp)
	}
}
