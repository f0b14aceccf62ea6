// Package config loads antoine's runtime configuration from an optional
// YAML file plus ANTOINE_-prefixed environment variables, and wires the
// global zap logger.
package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Selection  SelectionConfig  `yaml:"selection" mapstructure:"selection"`
	Crawl      CrawlConfig      `yaml:"crawl" mapstructure:"crawl"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Pricing    PricingConfig    `yaml:"pricing" mapstructure:"pricing"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Prompts    PromptsConfig    `yaml:"prompts" mapstructure:"prompts"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Circuit    CircuitConfig    `yaml:"circuit" mapstructure:"circuit"`
}

// RetryConfig tunes the exponential-backoff retry wrapped around the
// Anthropic client (internal/resilience).
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// CircuitConfig tunes the circuit breaker wrapped around the Anthropic
// client (internal/resilience).
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// AnthropicConfig holds credentials and model selection for the two LLM
// black-box endpoints (path-selection, field-extraction).
type AnthropicConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	SelectionModel  string `yaml:"selection_model" mapstructure:"selection_model"`
	ExtractionModel string `yaml:"extraction_model" mapstructure:"extraction_model"`
}

// DiscoveryConfig configures phase 1.
type DiscoveryConfig struct {
	OverallTimeoutSecs int    `yaml:"overall_timeout_secs" mapstructure:"overall_timeout_secs"`
	UserAgentFilter    string `yaml:"user_agent_filter" mapstructure:"user_agent_filter"`
	ProbeTimeoutSecs   int    `yaml:"probe_timeout_secs" mapstructure:"probe_timeout_secs"`
}

// SelectionConfig configures phase 2.
type SelectionConfig struct {
	MinConfidence       float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	RetryMinConfidence  float64 `yaml:"retry_min_confidence" mapstructure:"retry_min_confidence"`
	TimeoutSecs         int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxPages            int     `yaml:"max_pages" mapstructure:"max_pages"`
	PreFilterThreshold  int     `yaml:"pre_filter_threshold" mapstructure:"pre_filter_threshold"`
	UnderSelectionFloor int     `yaml:"under_selection_floor" mapstructure:"under_selection_floor"`
}

// CrawlConfig configures phase 3.
type CrawlConfig struct {
	PerPageTimeoutSecs int     `yaml:"per_page_timeout_secs" mapstructure:"per_page_timeout_secs"`
	MaxContentPerPage  int     `yaml:"max_content_per_page" mapstructure:"max_content_per_page"`
	MaxConcurrent      int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	PolitenessDelayMs  int     `yaml:"politeness_delay_ms" mapstructure:"politeness_delay_ms"`
	PrimaryAcceptChars int     `yaml:"primary_accept_chars" mapstructure:"primary_accept_chars"`
	FallbackBias       float64 `yaml:"fallback_bias" mapstructure:"fallback_bias"`
	UserAgent          string  `yaml:"user_agent" mapstructure:"user_agent"`
	CacheTTLHours      int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// ExtractionConfig configures phase 4.
type ExtractionConfig struct {
	MaxContentChars int `yaml:"max_content_chars" mapstructure:"max_content_chars"`
	TimeoutSecs     int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PricingConfig holds per-model token pricing (USD per million tokens).
type PricingConfig struct {
	Anthropic map[string]ModelPricing `yaml:"anthropic" mapstructure:"anthropic"`
}

// ModelPricing mirrors the per-million-token rate table LLM callers price
// their usage against.
type ModelPricing struct {
	Input         float64 `yaml:"input" mapstructure:"input"`
	Output        float64 `yaml:"output" mapstructure:"output"`
	BatchDiscount float64 `yaml:"batch_discount" mapstructure:"batch_discount"`
	CacheWriteMul float64 `yaml:"cache_write_mul" mapstructure:"cache_write_mul"`
	CacheReadMul  float64 `yaml:"cache_read_mul" mapstructure:"cache_read_mul"`
}

// BatchConfig configures the batch orchestrator.
type BatchConfig struct {
	MaxConcurrentCompanies int     `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
	EnableResourcePooling  bool    `yaml:"enable_resource_pooling" mapstructure:"enable_resource_pooling"`
	MaxCostPerCompanyUSD   float64 `yaml:"max_cost_per_company_usd" mapstructure:"max_cost_per_company_usd"`
}

// PromptsConfig locates the on-disk prompt store.
type PromptsConfig struct {
	FilePath string `yaml:"file_path" mapstructure:"file_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks required configuration fields based on run mode.
// Supported modes: "run" (single company), "batch".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "run", "batch":
		if c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Batch.MaxConcurrentCompanies < 1 || c.Batch.MaxConcurrentCompanies > 100 {
		errs = append(errs, "batch.max_concurrent_companies must be between 1 and 100")
	}
	if c.Selection.MinConfidence < 0 || c.Selection.MinConfidence > 1 {
		errs = append(errs, "selection.min_confidence must be between 0.0 and 1.0")
	}
	if c.Crawl.MaxConcurrent < 1 {
		errs = append(errs, "crawl.max_concurrent must be >= 1")
	}

	if len(errs) > 0 {
		return eris.New(fmt.Sprintf("config: validation failed: %s", strings.Join(errs, "; ")))
	}
	return nil
}

// Load reads configuration from an optional config.yaml and ANTOINE_*
// environment variables, layering defaults beneath both.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ANTOINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("anthropic.selection_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.extraction_model", "claude-sonnet-4-5-20250929")

	v.SetDefault("discovery.overall_timeout_secs", 60)
	v.SetDefault("discovery.user_agent_filter", "*")
	v.SetDefault("discovery.probe_timeout_secs", 10)

	v.SetDefault("selection.min_confidence", 0.6)
	v.SetDefault("selection.retry_min_confidence", 0.3)
	v.SetDefault("selection.timeout_secs", 60)
	v.SetDefault("selection.max_pages", 50)
	v.SetDefault("selection.pre_filter_threshold", 500)
	v.SetDefault("selection.under_selection_floor", 8)

	v.SetDefault("crawl.per_page_timeout_secs", 30)
	v.SetDefault("crawl.max_content_per_page", 10000)
	v.SetDefault("crawl.max_concurrent", 10)
	v.SetDefault("crawl.politeness_delay_ms", 500)
	v.SetDefault("crawl.primary_accept_chars", 500)
	v.SetDefault("crawl.fallback_bias", 1.5)
	v.SetDefault("crawl.user_agent", "Mozilla/5.0 (compatible; antoine/1.0; +https://github.com/antoinebi/antoine)")
	v.SetDefault("crawl.cache_ttl_hours", 0)

	v.SetDefault("extraction.max_content_chars", 80000)
	v.SetDefault("extraction.timeout_secs", 120)

	v.SetDefault("batch.max_concurrent_companies", 3)
	v.SetDefault("batch.enable_resource_pooling", true)
	v.SetDefault("batch.max_cost_per_company_usd", 10.0)

	v.SetDefault("prompts.file_path", "prompts.json")

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 30000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.25)

	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)

	v.SetDefault("pricing.anthropic.claude-haiku-4-5-20251001.input", 0.80)
	v.SetDefault("pricing.anthropic.claude-haiku-4-5-20251001.output", 4.00)
	v.SetDefault("pricing.anthropic.claude-haiku-4-5-20251001.batch_discount", 0.5)
	v.SetDefault("pricing.anthropic.claude-haiku-4-5-20251001.cache_write_mul", 1.25)
	v.SetDefault("pricing.anthropic.claude-haiku-4-5-20251001.cache_read_mul", 0.1)
	v.SetDefault("pricing.anthropic.claude-sonnet-4-5-20250929.input", 3.00)
	v.SetDefault("pricing.anthropic.claude-sonnet-4-5-20250929.output", 15.00)
	v.SetDefault("pricing.anthropic.claude-sonnet-4-5-20250929.batch_discount", 0.5)
	v.SetDefault("pricing.anthropic.claude-sonnet-4-5-20250929.cache_write_mul", 1.25)
	v.SetDefault("pricing.anthropic.claude-sonnet-4-5-20250929.cache_read_mul", 0.1)
	v.SetDefault("pricing.anthropic.claude-opus-4-6.input", 15.00)
	v.SetDefault("pricing.anthropic.claude-opus-4-6.output", 75.00)
	v.SetDefault("pricing.anthropic.claude-opus-4-6.batch_discount", 0.5)
	v.SetDefault("pricing.anthropic.claude-opus-4-6.cache_write_mul", 1.25)
	v.SetDefault("pricing.anthropic.claude-opus-4-6.cache_read_mul", 0.1)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
