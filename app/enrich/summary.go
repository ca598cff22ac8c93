package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/ticker-news/app/ai"
)

const (
	summarySystemPrompt = `You are a financial news writer. Write a direct, informative 2-3 sentence summary of what the article covers based on the headline. Write as if you are describing the article's content directly to an investor. Do not use phrases like "this article discusses" or "the news suggests" - just state the information directly.`
	summaryUserPrompt   = `Write a 2-3 sentence summary for this %s news headline: "%s"`
	summaryTemperature  = 0.7
)

type Summarizer struct {
	completer Completer
	timeout   time.Duration
}

func NewSummarizer(completer Completer, timeout time.Duration) *Summarizer {
	return &Summarizer{
		completer: completer,
		timeout:   timeout,
	}
}

// Summarize returns a model-written summary, or a template naming the ticker
// and headline whose wording depends on how the call failed.
func (s *Summarizer) Summarize(ctx context.Context, headline, ticker string) string {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.completer.Complete(callCtx, ai.Request{
		System:      summarySystemPrompt,
		User:        fmt.Sprintf(summaryUserPrompt, ticker, headline),
		Temperature: summaryTemperature,
	})
	if err != nil {
		logCompletionError("Summary generation failed, using template", err)
		return fallbackSummary(err, headline, ticker)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fallbackSummary(ai.ErrEmptyResponse, headline, ticker)
	}

	return answer
}

func fallbackSummary(err error, headline, ticker string) string {
	var statusErr *ai.StatusError
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		return fmt.Sprintf("Analysis of %s stock news: %s", ticker, headline)
	case errors.As(err, &statusErr):
		return fmt.Sprintf("%s stock update: %s", ticker, headline)
	default:
		return fmt.Sprintf("Latest news about %s: %s", ticker, headline)
	}
}

// logCompletionError logs a missing key at debug level only.
func logCompletionError(msg string, err error) {
	if errors.Is(err, ai.ErrNotConfigured) {
		slog.Debug(msg, "error", err)
		return
	}
	slog.Warn(msg, "error", err)
}
