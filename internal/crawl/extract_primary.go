package crawl

import (
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// extractPrimary runs the boilerplate-removal library (SPEC_FULL.md
// §4.3's "primary extractor") over a fetched page's HTML.
func extractPrimary(rawURL string, html []byte) (text, title string, ok bool) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", "", false
	}

	article, err := readability.FromReader(strings.NewReader(string(html)), pageURL)
	if err != nil {
		return "", "", false
	}

	content := strings.TrimSpace(article.TextContent)
	if content == "" {
		return "", "", false
	}
	return content, article.Title, true
}
