package feed

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"
)

var defaultRedirectHosts = []string{"news.google.com"}

type Parser struct {
	gofeedParser  *gofeed.Parser
	redirectHosts []string
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser:  gofeed.NewParser(),
		redirectHosts: defaultRedirectHosts,
	}
}

// Run turns a raw feed payload into at most MaxFeedItems articles in feed
// order. It never fails: an empty result tells the caller to fall back.
func (p *Parser) Run(data []byte) (articles []Article) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Feed parsing panicked", "error", r)
			articles = nil
		}
	}()

	items := p.discoverItems(data)

	articles = make([]Article, 0, len(items))
	for _, item := range items {
		if article, ok := p.normalizeItem(item); ok {
			articles = append(articles, article)
		}
	}

	slog.Debug("Feed parsed", "items", len(items), "articles", len(articles))
	return articles
}

// discoverItems uses gofeed for well-formed feeds and the text scanner for
// everything gofeed rejects.
func (p *Parser) discoverItems(data []byte) []rawItem {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil || len(feed.Items) == 0 {
		if err != nil {
			slog.Debug("gofeed rejected payload, scanning raw text", "error", err)
		}
		return scanItems(data)
	}

	items := feed.Items
	if len(items) > MaxFeedItems {
		items = items[:MaxFeedItems]
	}

	result := make([]rawItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		result = append(result, rawItem{
			Title:       strings.TrimSpace(item.Title),
			Description: item.Description,
			Link:        item.Link,
			PubDate:     item.Published,
			Published:   item.PublishedParsed,
		})
	}
	return result
}

func (p *Parser) normalizeItem(item rawItem) (Article, bool) {
	if item.Title == "" {
		return Article{}, false
	}

	link := ResolveLink(item.Description, item.Link, p.redirectHosts)
	if link == "" {
		return Article{}, false
	}

	article := Article{
		Headline: item.Title,
		Source:   ResolveSource(item.Description),
		URL:      link,
		Summary:  ResolveSummary(item.Description, item.Title),
	}

	if item.Published != nil {
		published := item.Published.UTC()
		article.PublishedAt = &published
	} else {
		article.PublishedAt = parseDate(item.PubDate)
	}

	return article, true
}
