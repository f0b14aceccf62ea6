// Package selection implements antoine's Selection phase (SPEC_FULL.md
// §4.2): choose the subset of discovered paths most likely to carry
// target fields, via a single LLM call with a deterministic fallback.
package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/antoinebi/antoine/internal/cost"
	"github.com/antoinebi/antoine/internal/llm"
	"github.com/antoinebi/antoine/internal/model"
	"github.com/antoinebi/antoine/internal/promptstore"
)

// Options configures one Selection call.
type Options struct {
	BaseURL        string
	Model          string
	MinConfidence  float64
	TimeoutSeconds int
	MaxPaths       int
	Locale         string
	isRetry        bool
}

func (o Options) withDefaults() Options {
	if o.MinConfidence <= 0 {
		o.MinConfidence = 0.6
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = 60
	}
	if o.MaxPaths <= 0 {
		o.MaxPaths = 50
	}
	return o
}

// preFilterThreshold and underSelectionFloor are the spec's hard
// constants (§4.2, §9 "treat as a tunable").
const (
	preFilterThreshold  = 500
	underSelectionFloor = 8
)

// Selector runs Selection for one company.
type Selector struct {
	client  llm.Client
	prompts *promptstore.Store
	calc    *cost.Calculator
}

// New creates a Selector.
func New(client llm.Client, prompts *promptstore.Store, calc *cost.Calculator) *Selector {
	return &Selector{client: client, prompts: prompts, calc: calc}
}

// Select chooses selected_paths from allPaths. It never returns an error:
// any LLM-level failure is absorbed into a deterministic Fallback result
// per spec §7.
func (s *Selector) Select(ctx context.Context, allPaths []string, opts Options) model.SelectionResult {
	opts = opts.withDefaults()

	candidates := allPaths
	if len(candidates) > preFilterThreshold {
		candidates = firstLevelPaths(candidates)
	}

	result, ok := s.callLLM(ctx, candidates, allPaths, opts)
	if !ok {
		return Fallback(opts.Locale)
	}

	if !opts.isRetry && len(result.SelectedPaths) < underSelectionFloor && opts.MinConfidence > 0.3 {
		retryOpts := opts
		retryOpts.MinConfidence = 0.3
		retryOpts.isRetry = true
		if retried, ok := s.callLLM(ctx, candidates, allPaths, retryOpts); ok {
			if len(retried.SelectedPaths) > len(result.SelectedPaths) {
				return addSpend(retried, result)
			}
			return addSpend(result, retried)
		}
	}

	return result
}

// firstLevelPaths keeps the root plus any path with exactly one slash
// (e.g. "/about", not "/about/history/team"), bounding prompt size for
// huge sites.
func firstLevelPaths(paths []string) []string {
	var out []string
	for _, p := range paths {
		if p == "/" || strings.Count(strings.Trim(p, "/"), "/") == 0 && p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Selector) callLLM(ctx context.Context, candidates, allPaths []string, opts Options) (model.SelectionResult, bool) {
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(opts.TimeoutSeconds)*time.Second)
	defer cancel()

	prompt := s.buildPrompt(candidates, opts)
	start := time.Now()

	resp, err := s.client.Complete(callCtx, llm.Request{
		Model:  opts.Model,
		Prompt: prompt,
	})
	if err != nil {
		return model.SelectionResult{}, false
	}

	parsed, err := parseResponse(resp.Content)
	if err != nil {
		return model.SelectionResult{}, false
	}

	selected := filterKnownPaths(parsed.SelectedPaths, allPaths)
	if len(selected) == 0 {
		return model.SelectionResult{}, false
	}
	if len(selected) > opts.MaxPaths {
		selected = selected[:opts.MaxPaths]
	}

	costUSD := s.calc.Claude(opts.Model, false, resp.Tokens.PromptTokens, resp.Tokens.CompletionTokens, 0, 0)

	return model.SelectionResult{
		Success:                 true,
		SelectedPaths:           selected,
		PathReasoning:           parsed.PathExplanations,
		ModelUsed:               opts.Model,
		TokensUsed:              resp.Tokens,
		CostUSD:                 costUSD,
		ElapsedSeconds:          time.Since(start).Seconds(),
		ConfidenceThresholdUsed: opts.MinConfidence,
		PromptSent:              prompt,
	}, true
}

// addSpend folds the token/cost spend of the call that is not returned into
// the result that is, so both calls of the under-selection retry count
// toward CompanyRecord.TotalCostUSD (spec §4.2). A retry call that errors or
// yields no known paths produces no result, and its spend is not counted.
func addSpend(kept, earlier model.SelectionResult) model.SelectionResult {
	kept.TokensUsed.PromptTokens += earlier.TokensUsed.PromptTokens
	kept.TokensUsed.CompletionTokens += earlier.TokensUsed.CompletionTokens
	kept.TokensUsed.TotalTokens += earlier.TokensUsed.TotalTokens
	kept.CostUSD += earlier.CostUSD
	kept.ElapsedSeconds += earlier.ElapsedSeconds
	return kept
}

func (s *Selector) buildPrompt(candidates []string, opts Options) string {
	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.Strings(sorted)

	candidatesJSON, _ := json.Marshal(sorted)
	tmpl := s.prompts.Get(promptstore.KeyPageSelection)
	replacer := strings.NewReplacer(
		"{{.Domain}}", opts.BaseURL,
		"{{.MinConfidence}}", fmt.Sprintf("%.2f", opts.MinConfidence),
		"{{.MaxPaths}}", fmt.Sprintf("%d", opts.MaxPaths),
		"{{.CandidatePaths}}", string(candidatesJSON),
	)
	return replacer.Replace(tmpl)
}
