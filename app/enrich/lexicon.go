package enrich

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yml
var defaultLexiconData []byte

// Lexicon holds the keywords used when no model answer is available.
type Lexicon struct {
	Bullish []string `yaml:"bullish"`
	Bearish []string `yaml:"bearish"`
}

func LoadLexicon(data []byte) (*Lexicon, error) {
	var l Lexicon
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}

	if len(l.Bullish) == 0 || len(l.Bearish) == 0 {
		return nil, fmt.Errorf("lexicon needs both bullish and bearish keywords")
	}

	for i, w := range l.Bullish {
		l.Bullish[i] = strings.ToLower(strings.TrimSpace(w))
	}
	for i, w := range l.Bearish {
		l.Bearish[i] = strings.ToLower(strings.TrimSpace(w))
	}

	return &l, nil
}

// DefaultLexicon returns the embedded keyword lists.
func DefaultLexicon() *Lexicon {
	l, err := LoadLexicon(defaultLexiconData)
	if err != nil {
		panic(err)
	}
	return l
}

// Score counts each keyword once if it occurs anywhere in text (substring,
// case-insensitive). The side with strictly more hits wins.
func (l *Lexicon) Score(text string) Sentiment {
	lower := strings.ToLower(text)

	bullish := countPresent(lower, l.Bullish)
	bearish := countPresent(lower, l.Bearish)

	switch {
	case bullish > bearish:
		return Bullish
	case bearish > bullish:
		return Bearish
	default:
		return Neutral
	}
}

func countPresent(text string, words []string) int {
	n := 0
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			n++
		}
	}
	return n
}
