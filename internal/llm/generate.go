package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// retryBaseDelay is the first backoff interval between attempts; each
// subsequent retry doubles it, with no jitter and no cap. Overridden in
// tests to keep them fast.
var retryBaseDelay = 600 * time.Millisecond

// retryableFragments mark error messages that look like transient vendor
// failures. The classification is logged for operators but does not change
// the retry behavior: every failure consumes an attempt from the same
// budget.
var retryableFragments = []string{"rate limit", "429", "quota", "timeout", "503", "502"}

// RawResult is the outcome of a single raw vendor call.
type RawResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// ModelCaller is the vendor-specific plug-point consumed by Generate. An
// adapter supplies its identity, its price sheet, and one raw call; the
// shared algorithm supplies everything else.
type ModelCaller interface {
	// Name identifies the provider ("openai", "gemini").
	Name() string

	// Model is the model this adapter is configured to call.
	Model() string

	// Prices is the pricing in effect for the configured model.
	Prices() Pricing

	// Call performs one raw vendor request and returns the response text
	// with its token usage.
	Call(ctx context.Context, messages []Message, cfg *Config) (RawResult, error)
}

// Generator is the capability contract every provider adapter exposes.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userContent string, cfg *Config) *Response
	IsAvailable(ctx context.Context) bool
	Name() string
	Model() string
}

// Generate runs the shared generation algorithm for one request: it builds
// the two-message request, calls the vendor with retries, accounts for
// latency, tokens, and cost, and parses the returned text into a JSON
// object. It never returns an error; any failure is converted into a
// Response with Success false and a diagnostic in Error.
func Generate(ctx context.Context, caller ModelCaller, logger *slog.Logger, systemPrompt, userContent string, cfg *Config) *Response {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	messages := []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: userContent},
	}

	start := time.Now()

	res, err := callWithRetry(ctx, caller, logger, messages, cfg)
	if err != nil {
		return failure(ctx, logger, caller, time.Since(start), err)
	}

	latency := time.Since(start)
	totalTokens := res.PromptTokens + res.CompletionTokens
	cost := caller.Prices().Cost(res.PromptTokens, res.CompletionTokens)

	content, err := ParseLoose(res.Text)
	if err != nil {
		return failure(ctx, logger, caller, latency, err)
	}

	logger.InfoContext(ctx, "model call succeeded",
		"provider", caller.Name(),
		"model", caller.Model(),
		"latency_ms", latency.Milliseconds(),
		"total_tokens", totalTokens,
		"prompt_tokens", res.PromptTokens,
		"completion_tokens", res.CompletionTokens,
		"cost_usd", fmt.Sprintf("%.6f", cost))

	return &Response{
		Success:          true,
		Content:          content,
		RawResponse:      res.Text,
		LatencyMs:        latency.Milliseconds(),
		PromptTokens:     res.PromptTokens,
		CompletionTokens: res.CompletionTokens,
		TotalTokens:      totalTokens,
		EstimatedCostUSD: cost,
		Provider:         caller.Name(),
		Model:            caller.Model(),
	}
}

// failure converts an error escaping the retry loop (or the parse cascade)
// into a failed Response with zeroed usage.
func failure(ctx context.Context, logger *slog.Logger, caller ModelCaller, latency time.Duration, err error) *Response {
	logger.ErrorContext(ctx, "model call failed",
		"provider", caller.Name(),
		"model", caller.Model(),
		"latency_ms", latency.Milliseconds(),
		"error", err)

	return &Response{
		Success:   false,
		LatencyMs: latency.Milliseconds(),
		Provider:  caller.Name(),
		Model:     caller.Model(),
		Error:     err.Error(),
	}
}

// callWithRetry invokes the adapter's raw call up to cfg.MaxRetries times,
// sleeping retryBaseDelay before the second attempt and doubling the delay
// for each attempt after that. The sleep is context-aware; cancelling ctx
// during a backoff aborts the loop.
func callWithRetry(ctx context.Context, caller ModelCaller, logger *slog.Logger, messages []Message, cfg *Config) (RawResult, error) {
	if cfg.MaxRetries < 1 {
		return RawResult{}, errors.New("model call failed after retries")
	}

	var res RawResult
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(cfg.MaxRetries-1), retry.NewExponential(retryBaseDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			logger.InfoContext(ctx, "retrying model call",
				"attempt", attempt,
				"max_attempts", cfg.MaxRetries)
		}

		r, err := caller.Call(ctx, messages, cfg)
		if err != nil {
			logger.WarnContext(ctx, "model call attempt failed",
				"attempt", attempt,
				"retryable", isRetryable(err),
				"error", err)
			// Retryability is informational only; every failure is marked
			// retryable and charged against the attempt budget.
			return retry.RetryableError(err)
		}

		res = r
		return nil
	})
	return res, err
}

// isRetryable reports whether the error message carries one of the known
// transient-failure markers (rate limiting, quota, timeout, 5xx).
func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, frag := range retryableFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
