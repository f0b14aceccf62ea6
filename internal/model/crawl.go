package model

import "sort"

// ExtractionMethod records which tier of the crawl extractor produced a
// page's content.
type ExtractionMethod string

const (
	ExtractionMethodPrimary  ExtractionMethod = "primary"
	ExtractionMethodFallback ExtractionMethod = "fallback"
	ExtractionMethodNone     ExtractionMethod = "none"
)

// PageCrawlResult is the outcome of fetching and extracting one page.
type PageCrawlResult struct {
	URL              string
	Success          bool
	Content          string
	Title            string
	ContentLength    int
	ElapsedSeconds   float64
	ExtractionMethod ExtractionMethod
	Error            string
}

// TruncationMarker is appended to content truncated at a configured max.
const TruncationMarker = "... [TRUNCATED]"

// BatchCrawlResult is the aggregated output of Crawling for one company.
type BatchCrawlResult struct {
	BaseURL             string
	TotalPages          int
	SuccessfulPages     int
	FailedPages         int
	TotalContentLength  int
	TotalElapsedSeconds float64
	AggregatedContent   string
	PageResults         []PageCrawlResult
	Errors              []string
	FromCache           bool
}

// NewBatchCrawlResult aggregates page results into a BatchCrawlResult,
// sorting successful pages by URL for deterministic aggregated content.
func NewBatchCrawlResult(baseURL string, results []PageCrawlResult, elapsed float64) BatchCrawlResult {
	b := BatchCrawlResult{
		BaseURL:             baseURL,
		TotalPages:          len(results),
		PageResults:         results,
		TotalElapsedSeconds: elapsed,
	}

	var successful []PageCrawlResult
	for _, r := range results {
		if r.Success {
			b.SuccessfulPages++
			b.TotalContentLength += r.ContentLength
			successful = append(successful, r)
		} else {
			b.FailedPages++
			if r.Error != "" {
				b.Errors = append(b.Errors, r.Error)
			}
		}
	}

	sort.Slice(successful, func(i, j int) bool { return successful[i].URL < successful[j].URL })
	b.AggregatedContent = aggregateContent(baseURL, successful)
	return b
}
