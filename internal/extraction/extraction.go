// Package extraction implements antoine's Extraction phase (SPEC_FULL.md
// §4.4): turn a company's aggregated crawled text into the flat
// business-intelligence schema via one LLM call, with field coercion and
// weighted confidence scoring.
package extraction

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/antoinebi/antoine/internal/cost"
	"github.com/antoinebi/antoine/internal/llm"
	"github.com/antoinebi/antoine/internal/model"
	"github.com/antoinebi/antoine/internal/promptstore"
)

// Options configures one Extraction call.
type Options struct {
	Model           string
	TimeoutSeconds  int
	MaxContentChars int
}

func (o Options) withDefaults() Options {
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = 90
	}
	if o.MaxContentChars <= 0 {
		o.MaxContentChars = 80000
	}
	return o
}

// sourceAttributionDepth is how many successfully-crawled URLs are
// recorded as provisional sources per populated field (spec §4.4).
const sourceAttributionDepth = 3

// Extractor runs Extraction for one company.
type Extractor struct {
	client  llm.Client
	prompts *promptstore.Store
	calc    *cost.Calculator
}

// New creates an Extractor.
func New(client llm.Client, prompts *promptstore.Store, calc *cost.Calculator) *Extractor {
	return &Extractor{client: client, prompts: prompts, calc: calc}
}

// Run extracts the flat schema from batch's aggregated content for the
// named company.
func (e *Extractor) Run(ctx context.Context, batch model.BatchCrawlResult, companyName string, opts Options) model.ExtractionResult {
	opts = opts.withDefaults()
	start := time.Now()

	content := batch.AggregatedContent
	if len(content) > opts.MaxContentChars {
		content = content[:opts.MaxContentChars] + model.TruncationMarker
	}

	prompt := e.buildPrompt(companyName, len(batch.PageResults), len(content), content)

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(opts.TimeoutSeconds)*time.Second)
	defer cancel()

	resp, err := e.client.Complete(callCtx, llm.Request{
		Model:  opts.Model,
		Prompt: prompt,
	})
	if err != nil {
		return model.ExtractionResult{Success: false, Error: eris.Wrap(err, "extraction: llm call").Error()}
	}

	raw, err := parseOuterObject(resp.Content)
	if err != nil {
		return model.ExtractionResult{Success: false, Error: err.Error()}
	}

	ensureCompanyName(raw, companyName)
	coerceFields(raw)

	costUSD := e.calc.Claude(opts.Model, false, resp.Tokens.PromptTokens, resp.Tokens.CompletionTokens, 0, 0)
	injectMetadata(raw, resp.Model, resp.Tokens, costUSD, time.Since(start).Seconds())

	fields, err := toExtractedFields(raw)
	if err != nil {
		return model.ExtractionResult{Success: false, Error: eris.Wrap(err, "extraction: decode fields").Error()}
	}

	scores, overall := scoreConfidence(raw)

	return model.ExtractionResult{
		Success:               true,
		ExtractedFields:       fields,
		FieldConfidenceScores: scores,
		OverallConfidence:     overall,
		SourceAttribution:     sourceAttribution(scores, batch),
		TokensUsed:            resp.Tokens,
		CostUSD:               costUSD,
		ModelUsed:             opts.Model,
		ElapsedSeconds:        time.Since(start).Seconds(),
	}
}

// parseOuterObject locates the outermost {...} substring in text and
// parses it as a generic JSON object, per spec §4.4's response parsing.
func parseOuterObject(text string) (map[string]any, error) {
	cleaned := stripCodeFence(text)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, eris.New("extraction: no JSON object found in response")
	}
	cleaned = cleaned[start : end+1]

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, eris.Wrap(err, "extraction: parse response JSON")
	}
	return raw, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return text
}

func ensureCompanyName(raw map[string]any, companyName string) {
	if name, ok := raw["company_name"].(string); !ok || name == "" {
		raw["company_name"] = companyName
	}
	raw["name"] = raw["company_name"]
}

func injectMetadata(raw map[string]any, modelUsed string, tokens model.TokenUsage, costUSD, elapsed float64) {
	raw["llm_model_used"] = modelUsed
	raw["field_extraction_tokens"] = tokens.TotalTokens
	raw["total_tokens"] = tokens.TotalTokens
	raw["total_cost_usd"] = costUSD
	raw["field_extraction_duration_seconds"] = elapsed
	raw["field_extraction_timestamp"] = time.Now().UTC().Format(time.RFC3339)
}

// toExtractedFields remarshals the coerced raw map into the typed flat
// schema, stashing anything the schema doesn't recognize into Extra.
func toExtractedFields(raw map[string]any) (model.ExtractedFields, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return model.ExtractedFields{}, err
	}

	var fields model.ExtractedFields
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return model.ExtractedFields{}, err
	}

	extra := make(map[string]any)
	for k, v := range raw {
		if !knownFields[k] {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		fields.Extra = extra
	}

	return fields, nil
}

func sourceAttribution(scores map[string]float64, batch model.BatchCrawlResult) model.SourceAttribution {
	var urls []string
	for _, p := range batch.PageResults {
		if p.Success {
			urls = append(urls, p.URL)
			if len(urls) == sourceAttributionDepth {
				break
			}
		}
	}
	if len(urls) == 0 {
		return nil
	}

	attribution := make(model.SourceAttribution, len(scores))
	for field, score := range scores {
		if score > 0 {
			attribution[field] = urls
		}
	}
	return attribution
}

// knownFields are the flat schema's root keys (model.ExtractedFields json
// tags); anything else in the LLM's response lands in Extra.
var knownFields = map[string]bool{
	"company_name": true, "name": true, "website": true,
	"company_description": true, "value_proposition": true, "industry": true,
	"location": true, "founding_year": true, "company_size": true,
	"employee_count_range": true, "business_model_type": true,
	"business_model": true, "saas_classification": true, "is_saas": true,
	"classification_confidence": true, "classification_justification": true,
	"products_services_offered": true, "key_services": true,
	"target_market": true, "pain_points": true,
	"competitive_advantages": true, "tech_stack": true,
	"company_stage": true, "funding_status": true,
	"funding_stage_detailed": true, "stage_confidence": true,
	"tech_sophistication": true, "tech_confidence": true,
	"industry_confidence": true, "geographic_scope": true,
	"sales_complexity": true, "key_decision_makers": true,
	"leadership_team": true, "decision_maker_type": true,
	"has_job_listings": true, "job_listings_count": true,
	"job_listings": true, "job_listings_details": true,
	"recent_news_events": true, "recent_news": true,
	"has_chat_widget": true, "has_forms": true,
	"social_media": true, "contact_info": true,
	"company_culture": true, "awards": true,
	"certifications": true, "partnerships": true,
	"ai_summary": true, "field_extraction_tokens": true,
	"total_tokens": true, "llm_model_used": true,
	"total_cost_usd": true, "field_extraction_duration_seconds": true,
	"field_extraction_timestamp": true,
}
