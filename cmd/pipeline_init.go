package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/antoinebi/antoine/internal/company"
	"github.com/antoinebi/antoine/internal/cost"
	"github.com/antoinebi/antoine/internal/crawl"
	"github.com/antoinebi/antoine/internal/discovery"
	"github.com/antoinebi/antoine/internal/extraction"
	"github.com/antoinebi/antoine/internal/fetcher"
	"github.com/antoinebi/antoine/internal/llm"
	"github.com/antoinebi/antoine/internal/orchestrator"
	"github.com/antoinebi/antoine/internal/progress"
	"github.com/antoinebi/antoine/internal/promptstore"
	"github.com/antoinebi/antoine/internal/resilience"
	"github.com/antoinebi/antoine/internal/selection"
)

// pipelineEnv holds everything the run/batch commands need: the batch
// orchestrator (built over a per-company pipeline factory), the progress
// sink it reports to, and the per-company options each pipeline runs with.
type pipelineEnv struct {
	Orchestrator *orchestrator.Orchestrator
	Sink         *progress.Sink
	CompanyOpts  company.Options
}

// initPipeline wires the Anthropic client, HTTP fetcher, prompt store, and
// cost calculator into a per-company pipeline factory, then wraps that
// factory in a batch orchestrator. Callers of run/batch share this wiring;
// only the input cardinality differs.
func initPipeline() (*pipelineEnv, error) {
	if err := cfg.Validate("run"); err != nil {
		return nil, err
	}

	retryCfg := resilience.FromRetryConfig(
		cfg.Retry.MaxAttempts,
		cfg.Retry.InitialBackoffMs,
		cfg.Retry.MaxBackoffMs,
		cfg.Retry.Multiplier,
		cfg.Retry.JitterFraction,
	)
	cbCfg := resilience.FromCircuitConfig(cfg.Circuit.FailureThreshold, cfg.Circuit.ResetTimeoutSecs)
	cbCfg.OnStateChange = func(from, to resilience.CircuitState) {
		zap.L().Warn("anthropic circuit breaker state change",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	llmClient := llm.NewClientWithResilience(cfg.Anthropic.Key, retryCfg, cbCfg)
	f := fetcher.New()

	prompts, err := promptstore.Load(cfg.Prompts.FilePath)
	if err != nil {
		return nil, eris.Wrap(err, "load prompt store")
	}

	pricing := cost.PricingConfig{Anthropic: make(map[string]cost.ModelPricing, len(cfg.Pricing.Anthropic))}
	for name, p := range cfg.Pricing.Anthropic {
		pricing.Anthropic[name] = cost.ModelPricing{
			Input:         p.Input,
			Output:        p.Output,
			BatchDiscount: p.BatchDiscount,
			CacheWriteMul: p.CacheWriteMul,
			CacheReadMul:  p.CacheReadMul,
		}
	}
	calc := cost.NewCalculator(cost.RatesFromConfig(pricing))

	var crawler *crawl.Crawler
	if cfg.Crawl.CacheTTLHours > 0 {
		crawler = crawl.NewWithCache(f, crawl.NewMemoryCache(), time.Duration(cfg.Crawl.CacheTTLHours)*time.Hour)
	} else {
		crawler = crawl.New(f)
	}

	factory := func() *company.Pipeline {
		return company.New(
			discovery.New(f),
			selection.New(llmClient, prompts, calc),
			crawler,
			extraction.New(llmClient, prompts, calc),
		)
	}

	companyOpts := company.Options{
		SelectionModel:         cfg.Anthropic.SelectionModel,
		ExtractionModel:        cfg.Anthropic.ExtractionModel,
		DiscoveryTimeoutSecs:   cfg.Discovery.OverallTimeoutSecs,
		SelectionTimeoutSecs:   cfg.Selection.TimeoutSecs,
		CrawlMaxConcurrent:     cfg.Crawl.MaxConcurrent,
		CrawlPerPageTimeout:    cfg.Crawl.PerPageTimeoutSecs,
		CrawlMaxContentPerPage: cfg.Crawl.MaxContentPerPage,
		CrawlPolitenessMs:      cfg.Crawl.PolitenessDelayMs,
		CrawlUserAgent:         cfg.Crawl.UserAgent,
		ExtractionMaxChars:     cfg.Extraction.MaxContentChars,
		ExtractionTimeoutSecs:  cfg.Extraction.TimeoutSecs,
		SelectionMinConfidence: cfg.Selection.MinConfidence,
		SelectionMaxPaths:      cfg.Selection.MaxPages,
		MaxCostUSD:             cfg.Batch.MaxCostPerCompanyUSD,
	}

	sink := progress.NewSink()

	orch := orchestrator.New(factory, sink, orchestrator.Options{
		MaxConcurrentCompanies: cfg.Batch.MaxConcurrentCompanies,
		EnableResourcePooling:  cfg.Batch.EnableResourcePooling,
	}, companyOpts)

	return &pipelineEnv{Orchestrator: orch, Sink: sink, CompanyOpts: companyOpts}, nil
}
