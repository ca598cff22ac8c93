package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	itemPattern = regexp.MustCompile(`(?s)<item(?:\s[^>]*)?>(.*?)</item>`)

	fieldPatterns = map[string]fieldPattern{
		"title":       newFieldPattern("title"),
		"description": newFieldPattern("description"),
		"link":        newFieldPattern("link"),
		"pubDate":     newFieldPattern("pubDate"),
	}
)

type fieldPattern struct {
	cdata *regexp.Regexp
	plain *regexp.Regexp
}

func newFieldPattern(tag string) fieldPattern {
	return fieldPattern{
		cdata: regexp.MustCompile(`(?s)<` + tag + `>\s*<!\[CDATA\[(.*?)\]\]>\s*</` + tag + `>`),
		plain: regexp.MustCompile(`(?s)<` + tag + `>(.*?)</` + tag + `>`),
	}
}

// splitItems returns the inner text of every <item> element in feed order.
func splitItems(data string) []string {
	matches := itemPattern.FindAllStringSubmatch(data, -1)
	fragments := make([]string, 0, len(matches))
	for _, m := range matches {
		fragments = append(fragments, m[1])
	}
	return fragments
}

// extractField returns the content of tag within fragment. A CDATA block is
// preferred; cdata reports which form matched.
func extractField(fragment, tag string) (value string, cdata bool, ok bool) {
	p, known := fieldPatterns[tag]
	if !known {
		p = newFieldPattern(tag)
	}

	if m := p.cdata.FindStringSubmatch(fragment); m != nil {
		return m[1], true, true
	}
	if m := p.plain.FindStringSubmatch(fragment); m != nil {
		return m[1], false, true
	}
	return "", false, false
}

// scanTitle prefers the literal CDATA text and otherwise strips tags from the plain match.
func scanTitle(fragment string) string {
	value, cdata, ok := extractField(fragment, "title")
	if !ok {
		return ""
	}
	if cdata {
		return strings.TrimSpace(DecodeEntities(value))
	}
	return strings.TrimSpace(DecodeEntities(StripTags(value)))
}

// parseDate converts a feed date string to UTC. Unparseable input yields nil.
func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// scanItems is the lenient path for payloads gofeed rejects: it reads items
// straight out of the raw text.
func scanItems(data []byte) []rawItem {
	fragments := splitItems(string(data))
	if len(fragments) > MaxFeedItems {
		fragments = fragments[:MaxFeedItems]
	}

	items := make([]rawItem, 0, len(fragments))
	for _, fragment := range fragments {
		item := rawItem{Title: scanTitle(fragment)}

		if description, cdata, ok := extractField(fragment, "description"); ok {
			if cdata {
				item.Description = description
			} else {
				item.Description = DecodeEntities(description)
			}
		}

		if link, _, ok := extractField(fragment, "link"); ok {
			item.Link = strings.TrimSpace(link)
		}

		if pubDate, _, ok := extractField(fragment, "pubDate"); ok {
			item.PubDate = strings.TrimSpace(pubDate)
		}

		items = append(items, item)
	}

	return items
}
