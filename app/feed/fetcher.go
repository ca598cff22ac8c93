package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxFeedBytes bounds how much of a feed response is read.
const maxFeedBytes = 5 << 20

type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
}

func NewFetcher(httpClient *http.Client, baseURL, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// BuildQuery returns the search query used for a ticker.
func BuildQuery(ticker string) string {
	return fmt.Sprintf("%s stock OR %s shares", ticker, ticker)
}

// SearchURL builds the feed URL for a ticker search.
func (f *Fetcher) SearchURL(ticker string) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid feed URL %q: %w", f.baseURL, err)
	}

	q := u.Query()
	q.Set("q", BuildQuery(ticker))
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Fetch downloads the raw feed payload for a ticker.
func (f *Fetcher) Fetch(ctx context.Context, ticker string) ([]byte, error) {
	searchURL, err := f.SearchURL(ticker)
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
