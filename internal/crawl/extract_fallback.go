package crawl

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fallbackSelectors are tried in order per SPEC_FULL.md §4.3.
var fallbackSelectors = []string{
	"main", "[role=\"main\"]", ".main-content", ".content", ".page-content",
	"section", ".product", ".products", ".service", ".services", "body",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// extractFallback parses raw HTML, strips non-content chrome, and tries
// content selectors in priority order, returning the first non-empty
// match with whitespace collapsed.
func extractFallback(html []byte) (text, title string, ok bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return "", "", false
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()
	title = strings.TrimSpace(doc.Find("title").First().Text())

	for _, sel := range fallbackSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		text := collapseWhitespace(node.Text())
		if text != "" {
			return text, title, true
		}
	}
	return "", title, false
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
