// Package company adapts antoine's four phases into a single per-company
// run (SPEC_FULL.md §4.5): detect locale, run Discovery -> Selection ->
// Crawling -> Extraction in sequence, map results onto a CompanyRecord,
// and report progress at phase boundaries.
package company

import (
	"context"
	"time"

	"github.com/antoinebi/antoine/internal/crawl"
	"github.com/antoinebi/antoine/internal/discovery"
	"github.com/antoinebi/antoine/internal/extraction"
	"github.com/antoinebi/antoine/internal/model"
	"github.com/antoinebi/antoine/internal/progress"
	"github.com/antoinebi/antoine/internal/selection"
)

// Phase names exposed to progress callbacks (spec §4.5), re-exported from
// internal/progress so callers never need that import just to compare
// against a phase constant.
const (
	PhaseDiscovery  = progress.PhaseDiscovery
	PhaseSelection  = progress.PhaseSelection
	PhaseCrawling   = progress.PhaseCrawling
	PhaseExtraction = progress.PhaseExtraction
)

// ProgressFunc is invoked at phase boundaries with (jobID, phase, message).
type ProgressFunc func(jobID string, phase progress.Phase, message string)

// Options configures one company run across all four phases.
type Options struct {
	SelectionModel        string
	ExtractionModel       string
	DiscoveryTimeoutSecs  int
	SelectionTimeoutSecs  int
	CrawlMaxConcurrent    int
	CrawlPerPageTimeout   int
	CrawlMaxContentPerPage int
	CrawlPolitenessMs     int
	CrawlUserAgent        string
	ExtractionMaxChars    int
	ExtractionTimeoutSecs int
	SelectionMinConfidence float64
	SelectionMaxPaths     int
	MaxCostUSD            float64
}

// Pipeline runs the four-phase adapter for one company at a time.
type Pipeline struct {
	discoverer *discovery.Discoverer
	selector   *selection.Selector
	crawler    *crawl.Crawler
	extractor  *extraction.Extractor
}

// New wires the four phase implementations into a Pipeline.
func New(d *discovery.Discoverer, s *selection.Selector, c *crawl.Crawler, e *extraction.Extractor) *Pipeline {
	return &Pipeline{discoverer: d, selector: s, crawler: c, extractor: e}
}

// Run executes the full adapter flow for one company, mutating record in
// place per spec §4.5's 8-step flow.
func (p *Pipeline) Run(ctx context.Context, record *model.CompanyRecord, opts Options, progress ProgressFunc) {
	start := time.Now()
	now := func() time.Time { return time.Now() }

	record.MarkInProgress(now())
	locale := detectLocale(record.Input.HomepageURL)

	report(progress, record.ID, PhaseDiscovery, "starting discovery")
	discoveryResult := p.discoverer.Run(ctx, record.Input.HomepageURL, discovery.Options{
		LocaleFilter:          locale,
		OverallTimeoutSeconds: opts.DiscoveryTimeoutSecs,
	})
	allPaths := discoveryResult.AllPaths
	if len(allPaths) == 0 {
		allPaths = selection.Fallback(locale).SelectedPaths
	}
	report(progress, record.ID, PhaseDiscovery, "discovery complete")

	report(progress, record.ID, PhaseSelection, "starting selection")
	selectionResult := p.selector.Select(ctx, allPaths, selection.Options{
		BaseURL:        discoveryResult.CanonicalURL,
		Model:          opts.SelectionModel,
		MinConfidence:  opts.SelectionMinConfidence,
		TimeoutSeconds: opts.SelectionTimeoutSecs,
		MaxPaths:       opts.SelectionMaxPaths,
		Locale:         locale,
	})
	report(progress, record.ID, PhaseSelection, "selection complete")

	if !selectionResult.IsFallback() {
		record.AddLLMCall(model.LLMCallRecord{
			Phase:        string(PhaseSelection),
			Model:        selectionResult.ModelUsed,
			PromptTokens: selectionResult.TokensUsed.PromptTokens,
			OutputTokens: selectionResult.TokensUsed.CompletionTokens,
			TotalTokens:  selectionResult.TokensUsed.TotalTokens,
			CostUSD:      selectionResult.CostUSD,
			ElapsedSecs:  selectionResult.ElapsedSeconds,
			Timestamp:    now(),
		})
	}

	if opts.MaxCostUSD > 0 && record.TotalCostUSD >= opts.MaxCostUSD {
		record.MarkFailed("cost ceiling exceeded", now())
		return
	}

	report(progress, record.ID, PhaseCrawling, "starting crawl")
	batch := p.crawler.Run(ctx, discoveryResult.CanonicalURL, selectionResult.SelectedPaths, crawl.Options{
		PerPageTimeoutSeconds: opts.CrawlPerPageTimeout,
		MaxContentPerPage:     opts.CrawlMaxContentPerPage,
		MaxConcurrent:         opts.CrawlMaxConcurrent,
		PolitenessDelayMs:     opts.CrawlPolitenessMs,
		UserAgent:             opts.CrawlUserAgent,
	})
	if batch.AggregatedContent == "" {
		record.MarkFailed("No content extracted from pages", now())
		return
	}
	report(progress, record.ID, PhaseCrawling, "crawl complete")

	report(progress, record.ID, PhaseExtraction, "starting extraction")
	extractionResult := p.extractor.Run(ctx, batch, record.Input.Name, extraction.Options{
		Model:           opts.ExtractionModel,
		TimeoutSeconds:  opts.ExtractionTimeoutSecs,
		MaxContentChars: opts.ExtractionMaxChars,
	})
	if !extractionResult.Success {
		record.MarkFailed(extractionResult.Error, now())
		return
	}
	report(progress, record.ID, PhaseExtraction, "extraction complete")

	applyExtractedFields(record, extractionResult)
	applyCrawlMetadata(record, batch)
	record.OverallConfidence = extractionResult.OverallConfidence

	record.AddLLMCall(model.LLMCallRecord{
		Phase:        string(PhaseExtraction),
		Model:        extractionResult.ModelUsed,
		PromptTokens: extractionResult.TokensUsed.PromptTokens,
		OutputTokens: extractionResult.TokensUsed.CompletionTokens,
		TotalTokens:  extractionResult.TokensUsed.TotalTokens,
		CostUSD:      extractionResult.CostUSD,
		ElapsedSecs:  extractionResult.ElapsedSeconds,
		Timestamp:    now(),
	})

	record.MarkSuccess(start, now())
}

func report(callback ProgressFunc, jobID string, phase progress.Phase, message string) {
	if callback != nil {
		callback(jobID, phase, message)
	}
}

// applyExtractedFields copies extracted fields onto record, only
// overwriting fields currently at their zero value (spec §4.5 step 6),
// and normalizes is_saas to a concrete boolean.
func applyExtractedFields(record *model.CompanyRecord, result model.ExtractionResult) {
	src := result.ExtractedFields
	dst := &record.Fields

	mergeString(&dst.CompanyName, src.CompanyName)
	mergeString(&dst.Name, src.Name)
	mergeString(&dst.Website, src.Website)
	mergeString(&dst.CompanyDescription, src.CompanyDescription)
	mergeString(&dst.ValueProposition, src.ValueProposition)
	mergeString(&dst.Industry, src.Industry)
	mergeString(&dst.Location, src.Location)
	mergeString(&dst.CompanySize, src.CompanySize)
	mergeString(&dst.EmployeeCountRange, src.EmployeeCountRange)
	mergeString(&dst.BusinessModelType, src.BusinessModelType)
	mergeString(&dst.BusinessModel, src.BusinessModel)
	mergeString(&dst.SaaSClassification, src.SaaSClassification)
	mergeString(&dst.TargetMarket, src.TargetMarket)
	mergeString(&dst.CompanyStage, src.CompanyStage)
	mergeString(&dst.FundingStatus, src.FundingStatus)
	mergeString(&dst.GeographicScope, src.GeographicScope)
	mergeString(&dst.SalesComplexity, src.SalesComplexity)
	mergeString(&dst.DecisionMakerType, src.DecisionMakerType)
	mergeString(&dst.CompanyCulture, src.CompanyCulture)
	mergeString(&dst.AISummary, src.AISummary)

	if dst.FoundingYear == nil {
		dst.FoundingYear = src.FoundingYear
	}
	if len(dst.ProductsServicesOffered) == 0 {
		dst.ProductsServicesOffered = src.ProductsServicesOffered
	}
	if len(dst.KeyServices) == 0 {
		dst.KeyServices = src.KeyServices
	}
	if len(dst.CompetitiveAdvantages) == 0 {
		dst.CompetitiveAdvantages = src.CompetitiveAdvantages
	}
	if len(dst.TechStack) == 0 {
		dst.TechStack = src.TechStack
	}
	if len(dst.LeadershipTeam) == 0 {
		dst.LeadershipTeam = src.LeadershipTeam
	}
	if len(dst.RecentNews) == 0 {
		dst.RecentNews = src.RecentNews
	}
	if dst.KeyDecisionMakers == nil {
		dst.KeyDecisionMakers = src.KeyDecisionMakers
	}
	if dst.SocialMedia == nil {
		dst.SocialMedia = src.SocialMedia
	}
	if dst.ContactInfo == nil {
		dst.ContactInfo = src.ContactInfo
	}

	// is_saas is never left null: default false if the extractor never
	// set it explicitly true.
	dst.IsSaaS = dst.IsSaaS || src.IsSaaS
}

func mergeString(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

// applyCrawlMetadata populates the crawl-derived bookkeeping fields on
// record (spec §4.5 step 6).
func applyCrawlMetadata(record *model.CompanyRecord, batch model.BatchCrawlResult) {
	var urls []string
	for _, p := range batch.PageResults {
		if p.Success {
			urls = append(urls, p.URL)
		}
	}
	record.PagesCrawled = urls
	record.ScrapedURLs = urls
	record.CrawlDepth = 1

	content := batch.AggregatedContent
	if len(content) > model.MaxRawContentChars {
		content = content[:model.MaxRawContentChars]
	}
	record.RawContent = content
}
