// Package llm wraps the Anthropic SDK behind antoine's LLM black-box
// contract (SPEC_FULL.md §6): a prompt in, content plus authoritative
// token counts out. Cost is always computed by the caller from a price
// table (internal/cost), never by this package.
package llm

import (
	"context"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/antoinebi/antoine/internal/model"
	"github.com/antoinebi/antoine/internal/resilience"
)

// Client is the black-box LLM endpoint used by both Selection and
// Extraction. A single implementation backs both call sites; callers
// distinguish them only by model and prompt.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is a single prompt-in call.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature *float64
}

// Response is the LLM black-box's output: content plus authoritative
// token counts. Success is implied by a nil error; the caller wraps
// failures into the phase-local Selection/Extraction result shapes.
type Response struct {
	Content        string
	Model          string
	Tokens         model.TokenUsage
	ElapsedSeconds float64
}

// sdkClient implements Client using the official anthropic-sdk-go, with
// retry-with-backoff and a circuit breaker wrapped around every call so a
// transient Anthropic outage degrades gracefully instead of cascading into
// every Selection/Extraction caller at once.
type sdkClient struct {
	client   sdk.Client
	retryCfg resilience.RetryConfig
	breaker  *resilience.CircuitBreaker
}

// NewClient creates a Client backed by the Anthropic SDK, authenticated
// with a single bearer API key (SPEC_FULL.md §6 environment inputs), using
// default retry and circuit-breaker settings.
func NewClient(apiKey string) Client {
	return NewClientWithResilience(apiKey, resilience.DefaultRetryConfig(), resilience.DefaultCircuitBreakerConfig())
}

// NewClientWithResilience creates a Client with caller-supplied retry and
// circuit-breaker configuration, typically sourced from antoine's config
// file.
func NewClientWithResilience(apiKey string, retryCfg resilience.RetryConfig, cbCfg resilience.CircuitBreakerConfig) Client {
	cbCfg.ShouldTrip = isTransientAPIError
	return &sdkClient{
		client:   sdk.NewClient(option.WithAPIKey(apiKey)),
		retryCfg: retryCfg,
		breaker:  resilience.NewCircuitBreaker(cbCfg),
	}
}

// anthropicTransientErrorTypes are the Anthropic API's own error-type
// tags for conditions worth retrying: rate limiting, transient overload,
// and its generic internal error. See
// https://docs.anthropic.com/en/api/errors for the taxonomy; anything
// else (invalid_request_error, authentication_error, ...) is permanent.
var anthropicTransientErrorTypes = []string{
	"overloaded_error",
	"rate_limit_error",
	"api_error",
}

// isTransientAPIError classifies an Anthropic SDK error as retryable,
// combining antoine's generic network-level heuristics with the
// Anthropic-specific error-type taxonomy the SDK surfaces in its error
// message.
func isTransientAPIError(err error) bool {
	if resilience.IsTransient(err) {
		return true
	}
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, t := range anthropicTransientErrorTypes {
		if strings.Contains(msg, t) {
			return true
		}
	}
	return false
}

func (c *sdkClient) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	retryCfg := c.retryCfg
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "messages.new")

	var msg *sdk.Message
	breakerErr := c.breaker.Execute(ctx, func(cbCtx context.Context) error {
		return resilience.Do(cbCtx, retryCfg, func(doCtx context.Context) error {
			m, callErr := c.client.Messages.New(doCtx, params)
			if callErr != nil {
				if isTransientAPIError(callErr) {
					return resilience.NewTransientError(callErr, 0)
				}
				return callErr
			}
			msg = m
			return nil
		})
	})
	if breakerErr != nil {
		return nil, eris.Wrap(breakerErr, "llm: create message")
	}

	var content string
	for _, block := range msg.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &Response{
		Content: content,
		Model:   string(msg.Model),
		Tokens: model.TokenUsage{
			PromptTokens:     msg.Usage.InputTokens,
			CompletionTokens: msg.Usage.OutputTokens,
			TotalTokens:      msg.Usage.InputTokens + msg.Usage.OutputTokens,
		},
		ElapsedSeconds: time.Since(start).Seconds(),
	}, nil
}
