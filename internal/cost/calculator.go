// Package cost computes USD cost from LLM token usage. The two LLM
// endpoints (selection, extraction) return only authoritative token
// counts; cost is always derived here from a per-model price table, per
// the black-box contract in SPEC_FULL.md §6.
package cost

// Rates holds the per-model pricing table.
type Rates struct {
	Anthropic map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input         float64 `yaml:"input" mapstructure:"input"`
	Output        float64 `yaml:"output" mapstructure:"output"`
	BatchDiscount float64 `yaml:"batch_discount" mapstructure:"batch_discount"`
	CacheWriteMul float64 `yaml:"cache_write_mul" mapstructure:"cache_write_mul"`
	CacheReadMul  float64 `yaml:"cache_read_mul" mapstructure:"cache_read_mul"`
}

// Calculator computes costs for LLM API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Claude computes the cost in USD for one Claude API call. Returns 0 for
// unknown models rather than erroring, since a missing price entry should
// not fail the pipeline's phases.
func (c *Calculator) Claude(model string, isBatch bool, input, output, cacheWrite, cacheRead int64) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}

	batchMul := 1.0
	if isBatch {
		batchMul = rate.BatchDiscount
	}

	inCost := (float64(input) / 1e6) * rate.Input * batchMul
	outCost := (float64(output) / 1e6) * rate.Output * batchMul
	cwCost := (float64(cacheWrite) / 1e6) * rate.Input * rate.CacheWriteMul * batchMul
	crCost := (float64(cacheRead) / 1e6) * rate.Input * rate.CacheReadMul * batchMul

	return inCost + outCost + cwCost + crCost
}

// RatesFromConfig converts config pricing into cost rates, falling back
// to DefaultRates() for any zero-value fields.
func RatesFromConfig(cfg PricingConfig) Rates {
	defaults := DefaultRates()

	rates := Rates{Anthropic: make(map[string]ModelRate, len(defaults.Anthropic))}
	for k, v := range defaults.Anthropic {
		rates.Anthropic[k] = v
	}

	for model, mp := range cfg.Anthropic {
		r := rates.Anthropic[model]
		if mp.Input > 0 {
			r.Input = mp.Input
		}
		if mp.Output > 0 {
			r.Output = mp.Output
		}
		if mp.BatchDiscount > 0 {
			r.BatchDiscount = mp.BatchDiscount
		}
		if mp.CacheWriteMul > 0 {
			r.CacheWriteMul = mp.CacheWriteMul
		}
		if mp.CacheReadMul > 0 {
			r.CacheReadMul = mp.CacheReadMul
		}
		rates.Anthropic[model] = r
	}

	return rates
}

// PricingConfig mirrors config.PricingConfig to avoid an import cycle.
type PricingConfig struct {
	Anthropic map[string]ModelPricing
}

// ModelPricing mirrors config.ModelPricing.
type ModelPricing struct {
	Input         float64
	Output        float64
	BatchDiscount float64
	CacheWriteMul float64
	CacheReadMul  float64
}

// DefaultRates returns the default Anthropic pricing table.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001": {
				Input: 0.80, Output: 4.00,
				BatchDiscount: 0.5, CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
			"claude-sonnet-4-5-20250929": {
				Input: 3.00, Output: 15.00,
				BatchDiscount: 0.5, CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
			"claude-opus-4-6": {
				Input: 15.00, Output: 75.00,
				BatchDiscount: 0.5, CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
		},
	}
}
