package watchlist

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// File is the on-disk watchlist format.
type File struct {
	Tickers []string `yaml:"tickers"`
}

// Watchlist holds the tickers kept warm by the background refresh.
type Watchlist struct {
	file    string
	tickers []string
	mu      sync.RWMutex
}

func NewWatchlist(file string) *Watchlist {
	return &Watchlist{file: file}
}

// Run loads the watchlist file. A missing or unset file leaves the list empty.
func (w *Watchlist) Run() error {
	if w.file == "" {
		return nil
	}
	if _, err := os.Stat(w.file); os.IsNotExist(err) {
		slog.Warn("Watchlist file not found", "file", w.file)
		return nil
	}

	tickers, err := w.parseFile()
	if err != nil {
		return fmt.Errorf("error loading %s: %w", w.file, err)
	}

	w.mu.Lock()
	w.tickers = tickers
	w.mu.Unlock()

	slog.Debug("Watchlist loaded", "file", w.file, "tickers", len(tickers))
	return nil
}

func (w *Watchlist) GetTickers() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	tickersCopy := make([]string, len(w.tickers))
	copy(tickersCopy, w.tickers)
	return tickersCopy
}

func (w *Watchlist) GetTickerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.tickers)
}

func (w *Watchlist) parseFile() ([]string, error) {
	data, err := os.ReadFile(w.file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	seen := make(map[string]bool, len(f.Tickers))
	tickers := make([]string, 0, len(f.Tickers))

	for i, raw := range f.Tickers {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if ticker == "" {
			return nil, fmt.Errorf("empty ticker at index %d", i)
		}
		if strings.ContainsAny(ticker, " \t\n") {
			return nil, fmt.Errorf("invalid ticker at index %d: %q", i, raw)
		}
		if seen[ticker] {
			continue
		}
		seen[ticker] = true
		tickers = append(tickers, ticker)
	}

	return tickers, nil
}
