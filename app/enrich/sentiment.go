package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/ticker-news/app/ai"
)

type Sentiment string

const (
	Bullish Sentiment = "bullish"
	Bearish Sentiment = "bearish"
	Neutral Sentiment = "neutral"
)

// ParseSentiment accepts exactly one of the three labels, ignoring case and
// surrounding whitespace.
func ParseSentiment(s string) (Sentiment, bool) {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case Bullish:
		return Bullish, true
	case Bearish:
		return Bearish, true
	case Neutral:
		return Neutral, true
	}
	return "", false
}

// Completer is the chat-completion call the classifier and summarizer need.
type Completer interface {
	Complete(ctx context.Context, r ai.Request) (string, error)
}

const (
	sentimentSystemPrompt = "You are a financial sentiment analyzer. Analyze the sentiment of stock news and respond with ONLY one word: bullish, bearish, or neutral."
	sentimentUserPrompt   = "Analyze the sentiment of this stock news:\n\nHeadline: %s\n\nSummary: %s\n\nRespond with only: bullish, bearish, or neutral"
	sentimentTemperature  = 0.3
)

type Classifier struct {
	completer Completer
	lexicon   *Lexicon
	timeout   time.Duration
}

func NewClassifier(completer Completer, lexicon *Lexicon, timeout time.Duration) *Classifier {
	return &Classifier{
		completer: completer,
		lexicon:   lexicon,
		timeout:   timeout,
	}
}

// Classify asks the model for a label and falls back to the keyword lexicon
// on any failure or unexpected answer.
func (c *Classifier) Classify(ctx context.Context, headline, summary string) Sentiment {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	answer, err := c.completer.Complete(callCtx, ai.Request{
		System:      sentimentSystemPrompt,
		User:        fmt.Sprintf(sentimentUserPrompt, headline, summary),
		Temperature: sentimentTemperature,
	})
	if err == nil {
		if s, ok := ParseSentiment(answer); ok {
			return s
		}
		slog.Debug("Unexpected sentiment label, using lexicon", "answer", answer)
	} else {
		logCompletionError("Sentiment analysis failed, using lexicon", err)
	}

	return c.lexicon.Score(headline + " " + summary)
}
