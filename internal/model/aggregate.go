package model

import (
	"fmt"
	"net/url"
	"strings"
)

const aggregateSeparator = "----------------------------------------"

// aggregateContent builds the deterministic text blob Extraction's prompt
// quotes verbatim. Layout: a header block (domain, page count, total
// chars), then per-page blocks in URL order (index, url, title, length,
// separator, content), then a trailing footer listing processed URLs.
func aggregateContent(baseURL string, pages []PageCrawlResult) string {
	if len(pages) == 0 {
		return ""
	}

	domain := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		domain = u.Host
	}

	totalChars := 0
	for _, p := range pages {
		totalChars += p.ContentLength
	}

	var b strings.Builder
	fmt.Fprintf(&b, "DOMAIN: %s\n", domain)
	fmt.Fprintf(&b, "PAGES: %d\n", len(pages))
	fmt.Fprintf(&b, "TOTAL_CHARS: %d\n", totalChars)
	b.WriteString(aggregateSeparator + "\n\n")

	for i, p := range pages {
		fmt.Fprintf(&b, "[Page %d] %s\n", i+1, p.URL)
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
		fmt.Fprintf(&b, "Length: %d\n", p.ContentLength)
		b.WriteString(aggregateSeparator + "\n")
		if p.Content != "" {
			b.WriteString(p.Content)
		} else {
			b.WriteString("[No content extracted]")
		}
		b.WriteString("\n\n")
	}

	b.WriteString(aggregateSeparator + "\n")
	b.WriteString("PROCESSED URLS:\n")
	for _, p := range pages {
		b.WriteString(p.URL + "\n")
	}

	return b.String()
}
