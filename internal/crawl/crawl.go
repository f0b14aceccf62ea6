// Package crawl implements antoine's Crawling phase (SPEC_FULL.md §4.3):
// fetch selected paths concurrently, extract main content from each with a
// two-tier extractor, and aggregate into one deterministic text blob.
package crawl

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/antoinebi/antoine/internal/fetcher"
	"github.com/antoinebi/antoine/internal/model"
)

// acceptChars is the minimum character count at which the primary
// extractor's output is accepted outright (spec §4.3 step 4).
const acceptChars = 500

// fallbackBias biases page selection toward the fallback extractor when
// it is substantially larger than the primary output (spec §4.3 step 5).
const fallbackBias = 1.5

// Options configures one Crawling run.
type Options struct {
	PerPageTimeoutSeconds int
	MaxContentPerPage     int
	MaxConcurrent         int
	PolitenessDelayMs     int
	UserAgent             string
}

func (o Options) withDefaults() Options {
	if o.PerPageTimeoutSeconds <= 0 {
		o.PerPageTimeoutSeconds = 30
	}
	if o.MaxContentPerPage <= 0 {
		o.MaxContentPerPage = 10000
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 10
	}
	if o.PolitenessDelayMs <= 0 {
		o.PolitenessDelayMs = 500
	}
	if o.UserAgent == "" {
		o.UserAgent = "Mozilla/5.0 (compatible; antoine/1.0)"
	}
	return o
}

// Crawler runs Crawling for one company's selected paths.
type Crawler struct {
	fetcher  fetcher.Client
	cache    Cache
	cacheTTL time.Duration
}

// New creates a Crawler backed by f, with caching disabled.
func New(f fetcher.Client) *Crawler {
	return &Crawler{fetcher: f}
}

// NewWithCache creates a Crawler that consults cache before fetching and
// populates it with every fresh result, keyed by base URL, for ttl.
func NewWithCache(f fetcher.Client, cache Cache, ttl time.Duration) *Crawler {
	return &Crawler{fetcher: f, cache: cache, cacheTTL: ttl}
}

// Run fetches every path under baseURL, extracts content from each, and
// aggregates successes into a BatchCrawlResult. Per-page failures never
// cancel siblings (spec §4.3, §7). A cache hit for baseURL short-circuits
// the network entirely.
func (c *Crawler) Run(ctx context.Context, baseURL string, paths []string, opts Options) model.BatchCrawlResult {
	start := time.Now()
	opts = opts.withDefaults()

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, baseURL); ok {
			cached.FromCache = true
			return cached
		}
	}

	sem := make(chan struct{}, opts.MaxConcurrent)
	limiter := rate.NewLimiter(rate.Every(time.Duration(opts.PolitenessDelayMs)*time.Millisecond), 1)

	results := make([]model.PageCrawlResult, len(paths))
	var wg sync.WaitGroup

	for i, p := range paths {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			_ = limiter.Wait(ctx)
			results[idx] = c.fetchAndExtract(ctx, baseURL, path, opts)
		}(i, p)
	}
	wg.Wait()

	result := model.NewBatchCrawlResult(baseURL, results, time.Since(start).Seconds())
	if c.cache != nil && c.cacheTTL > 0 {
		c.cache.Set(ctx, baseURL, result, c.cacheTTL)
	}
	return result
}

func (c *Crawler) fetchAndExtract(ctx context.Context, baseURL, path string, opts Options) model.PageCrawlResult {
	pageStart := time.Now()
	absoluteURL := resolvePath(baseURL, path)

	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(opts.PerPageTimeoutSeconds)*time.Second)
	defer cancel()

	resp, err := c.fetcher.Fetch(reqCtx, absoluteURL, fetcher.Options{
		Timeout:   time.Duration(opts.PerPageTimeoutSeconds) * time.Second,
		UserAgent: opts.UserAgent,
	})
	if err != nil {
		return model.PageCrawlResult{
			URL:            absoluteURL,
			Success:        false,
			ElapsedSeconds: time.Since(pageStart).Seconds(),
			Error:          err.Error(),
		}
	}
	if resp.StatusCode >= 400 {
		return model.PageCrawlResult{
			URL:            absoluteURL,
			Success:        false,
			ElapsedSeconds: time.Since(pageStart).Seconds(),
			Error:          "fetch returned status " + httpStatusText(resp.StatusCode),
		}
	}

	content, title, method := chooseExtraction(absoluteURL, resp.Body)
	if content == "" {
		return model.PageCrawlResult{
			URL:              absoluteURL,
			Success:          false,
			Title:            title,
			ElapsedSeconds:   time.Since(pageStart).Seconds(),
			ExtractionMethod: model.ExtractionMethodNone,
			Error:            "no content extracted",
		}
	}

	truncated := truncate(content, opts.MaxContentPerPage)
	return model.PageCrawlResult{
		URL:              absoluteURL,
		Success:          true,
		Content:          truncated,
		Title:            title,
		ContentLength:    len(truncated),
		ElapsedSeconds:   time.Since(pageStart).Seconds(),
		ExtractionMethod: method,
	}
}

// chooseExtraction runs the primary extractor, and the fallback if the
// primary is too short, keeping whichever yields more text with a bias
// toward the fallback (spec §4.3 step 5).
func chooseExtraction(pageURL string, html []byte) (content, title string, method model.ExtractionMethod) {
	primaryText, primaryTitle, primaryOK := extractPrimary(pageURL, html)
	if primaryOK && len(primaryText) >= acceptChars {
		return primaryText, primaryTitle, model.ExtractionMethodPrimary
	}

	fallbackText, fallbackTitle, fallbackOK := extractFallback(html)

	switch {
	case primaryOK && fallbackOK:
		if float64(len(fallbackText))*fallbackBias > float64(len(primaryText)) {
			return fallbackText, pickTitle(fallbackTitle, primaryTitle), model.ExtractionMethodFallback
		}
		return primaryText, primaryTitle, model.ExtractionMethodPrimary
	case fallbackOK:
		return fallbackText, fallbackTitle, model.ExtractionMethodFallback
	case primaryOK:
		return primaryText, primaryTitle, model.ExtractionMethodPrimary
	default:
		return "", "", model.ExtractionMethodNone
	}
}

func pickTitle(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}

func truncate(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}
	return content[:maxChars] + model.TruncationMarker
}

func resolvePath(baseURL, path string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + path
	}
	resolved, err := base.Parse(path)
	if err != nil {
		return baseURL + path
	}
	return resolved.String()
}

func httpStatusText(code int) string {
	return strings.TrimSpace(http.StatusText(code)) + " (" + strconv.Itoa(code) + ")"
}
