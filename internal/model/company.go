// Package model holds the data types that flow between antoine's pipeline
// phases: discovery, selection, crawling, extraction, and the per-company
// and batch results that wrap them.
package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// CompanyInput is the work item handed to the per-company pipeline.
type CompanyInput struct {
	Name        string
	HomepageURL string
}

// Normalize validates the input and prepends a scheme to HomepageURL when
// one is missing. It is the only mutation CompanyInput undergoes; the
// caller-supplied value is otherwise immutable through the pipeline.
func (c CompanyInput) Normalize() (CompanyInput, error) {
	if strings.TrimSpace(c.Name) == "" {
		return c, eris.New("model: company name is empty")
	}
	raw := strings.TrimSpace(c.HomepageURL)
	if raw == "" {
		return c, eris.New("model: homepage url is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return c, eris.Wrapf(err, "model: homepage url %q does not parse", c.HomepageURL)
	}
	if u.Host == "" {
		return c, eris.Errorf("model: homepage url %q does not parse", c.HomepageURL)
	}
	c.HomepageURL = raw
	return c, nil
}

// ScrapeStatus is the lifecycle state of a CompanyRecord. It transitions
// only pending -> in_progress -> (success | failed).
type ScrapeStatus string

const (
	ScrapeStatusPending    ScrapeStatus = "pending"
	ScrapeStatusInProgress ScrapeStatus = "in_progress"
	ScrapeStatusSuccess    ScrapeStatus = "success"
	ScrapeStatusFailed     ScrapeStatus = "failed"
)

// LLMCallRecord captures one LLM invocation for cost/token bookkeeping.
type LLMCallRecord struct {
	Phase        string
	Model        string
	PromptTokens int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
	ElapsedSecs  float64
	Timestamp    time.Time
}

// CompanyRecord is the canonical, persisted company object. It is a
// superset of the extracted fields plus pipeline bookkeeping.
type CompanyRecord struct {
	ID     string
	Input  CompanyInput
	Fields ExtractedFields

	ScrapeStatus ScrapeStatus
	ScrapeError  string

	PagesCrawled []string
	ScrapedURLs  []string
	CrawlDepth   int
	RawContent   string

	TotalInputTokens  int64
	TotalOutputTokens int64
	TotalCostUSD      float64
	LLMCallsBreakdown []LLMCallRecord

	OverallConfidence float64

	ScrapeDurationSeconds float64
	CreatedAt             time.Time
	LastUpdated           time.Time

	Embedding []float32
}

// NewCompanyRecord constructs a record in the pending state, ready for the
// per-company pipeline to run.
func NewCompanyRecord(id string, input CompanyInput, now time.Time) *CompanyRecord {
	return &CompanyRecord{
		ID:           id,
		Input:        input,
		ScrapeStatus: ScrapeStatusPending,
		CreatedAt:    now,
		LastUpdated:  now,
	}
}

// MaxRawContentChars is the default cap applied to CompanyRecord.RawContent.
const MaxRawContentChars = 10000

// AddLLMCall appends a call record and folds its cost/tokens into the
// record's running totals. It is the only way totals are mutated, which
// keeps TotalCostUSD == sum(LLMCallsBreakdown[i].CostUSD) by construction.
func (r *CompanyRecord) AddLLMCall(call LLMCallRecord) {
	r.LLMCallsBreakdown = append(r.LLMCallsBreakdown, call)
	r.TotalInputTokens += call.PromptTokens
	r.TotalOutputTokens += call.OutputTokens
	r.TotalCostUSD += call.CostUSD
}

// MarkInProgress transitions the record to in_progress and clears any prior
// scrape error.
func (r *CompanyRecord) MarkInProgress(now time.Time) {
	r.ScrapeStatus = ScrapeStatusInProgress
	r.ScrapeError = ""
	r.LastUpdated = now
}

// MarkFailed transitions the record to failed with a human-readable reason.
func (r *CompanyRecord) MarkFailed(reason string, now time.Time) {
	r.ScrapeStatus = ScrapeStatusFailed
	r.ScrapeError = reason
	r.LastUpdated = now
}

// MarkSuccess transitions the record to success and stamps the elapsed wall
// time since start.
func (r *CompanyRecord) MarkSuccess(start, now time.Time) {
	r.ScrapeStatus = ScrapeStatusSuccess
	r.ScrapeDurationSeconds = now.Sub(start).Seconds()
	r.LastUpdated = now
}
