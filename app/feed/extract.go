package feed

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

const (
	minSummaryLength = 30
	maxSummaryLength = 200
	ellipsis         = "..."
)

var (
	tagPattern         = regexp.MustCompile(`</?[^>]+(>|$)`)
	urlPattern         = regexp.MustCompile(`https?://[^\s<>"]+`)
	bareURLPattern     = regexp.MustCompile(`https?://\S+`)
	attributionPattern = regexp.MustCompile(`^[^-]+\s-\s+`)
	spacePattern       = regexp.MustCompile(`\s+`)

	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&quot;", `"`,
		"&#39;", "'",
		"&#x27;", "'",
		"&apos;", "'",
		"&lt;", "<",
		"&gt;", ">",
		"&nbsp;", " ",
	)
)

// StripTags removes anything that looks like a markup tag. A trailing
// unterminated tag is dropped as well.
func StripTags(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(s)
}

// DecodeEntities decodes the handful of entities feeds actually use. It is a
// single pass, so double-encoded text loses one level only.
func DecodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// CollapseSpace folds runs of whitespace into single spaces and trims.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// FindURLs returns every http(s) URL in s in order of appearance.
func FindURLs(s string) []string {
	return urlPattern.FindAllString(s, -1)
}

// RemoveURLs deletes every http(s) URL from s.
func RemoveURLs(s string) string {
	return bareURLPattern.ReplaceAllString(s, "")
}

// StripAttribution drops a leading "Source - " prefix.
func StripAttribution(s string) string {
	return attributionPattern.ReplaceAllString(s, "")
}

// Truncate shortens s to max runes, ending with an ellipsis when cut.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= len(ellipsis) {
		return string(runes[:max])
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis
}

type anchor struct {
	Href  string
	Label string
}

// anchors lists the links inside an HTML fragment. Unparseable markup yields none.
func anchors(markup string) []anchor {
	if !strings.Contains(markup, "<a") {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var result []anchor
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		result = append(result, anchor{
			Href:  strings.TrimSpace(href),
			Label: CollapseSpace(s.Text()),
		})
	})
	return result
}

// isRedirect reports whether u points back at the aggregator instead of the publisher.
func isRedirect(u string, redirectHosts []string) bool {
	if strings.Contains(u, "rss/articles") {
		return true
	}
	for _, host := range redirectHosts {
		if strings.Contains(u, host) {
			return true
		}
	}
	return false
}

// ResolveLink picks the publisher URL for an item: an href in the description,
// then a bare URL in the description, then the item's own link.
func ResolveLink(description, link string, redirectHosts []string) string {
	if description != "" {
		for _, a := range anchors(description) {
			if a.Href != "" && !isRedirect(a.Href, redirectHosts) {
				return a.Href
			}
		}

		for _, u := range FindURLs(description) {
			if !isRedirect(u, redirectHosts) {
				return u
			}
		}
	}

	return strings.TrimSpace(link)
}

// ResolveSource names the publisher from the description markup.
func ResolveSource(description string) string {
	if description == "" {
		return DefaultSource
	}

	for _, a := range anchors(description) {
		if a.Label != "" {
			return a.Label
		}
	}

	text := StripTags(description)
	if left, _, found := strings.Cut(text, " - "); found {
		if left = strings.TrimSpace(left); left != "" {
			return left
		}
	}

	return DefaultSource
}

// ResolveSummary turns description markup into a short plain-text excerpt,
// substituting the headline when too little text survives cleanup.
func ResolveSummary(description, headline string) string {
	if description == "" {
		return headline
	}

	text := DecodeEntities(StripTags(description))
	text = StripAttribution(text)
	text = RemoveURLs(text)
	text = norm.NFC.String(CollapseSpace(text))

	if text == "" || utf8.RuneCountInString(text) < minSummaryLength {
		text = headline
	}

	return Truncate(text, maxSummaryLength)
}
