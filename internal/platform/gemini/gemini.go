package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/trooth/llm-service/internal/llm"
)

const (
	// ProviderName is the registry identifier for this adapter.
	ProviderName = "gemini"

	// DefaultModel is used when no model override is configured.
	DefaultModel = "gemini-2.5-flash"

	defaultProject  = "trooth-prod"
	defaultLocation = "us-east4"
)

// defaultPricing applies to models missing from modelPricing.
// USD per 1M tokens, January 2026 price sheet.
var defaultPricing = llm.Pricing{InputPer1M: 0.30, OutputPer1M: 2.50}

var modelPricing = llm.PriceTable{
	"gemini-2.5-flash":       {InputPer1M: 0.30, OutputPer1M: 2.50},
	"gemini-2.5-flash-lite":  {InputPer1M: 0.10, OutputPer1M: 0.40},
	"gemini-2.5-pro":         {InputPer1M: 1.25, OutputPer1M: 10.00},
	"gemini-2.0-flash":       {InputPer1M: 0.10, OutputPer1M: 0.40},
	"gemini-3-flash-preview": {InputPer1M: 0.50, OutputPer1M: 3.00},
	"gemini-3-pro-preview":   {InputPer1M: 2.00, OutputPer1M: 12.00},
}

// truncationMarkers are substrings of finish reasons that indicate the
// model stopped at the output-length limit.
var truncationMarkers = []string{"MAX_TOKENS", "LENGTH", "TRUNCAT"}

// Provider is the cloud-platform adapter. It is immutable after
// construction apart from the lazily created client handle.
type Provider struct {
	logger   *slog.Logger
	model    string
	project  string
	location string
	prices   llm.Pricing

	clientOnce sync.Once
	client     *genai.Client
	clientErr  error
}

// Option customizes a Provider at construction time.
type Option func(*Provider)

// WithModel overrides the default model. An empty value is ignored.
func WithModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithProject overrides the Google Cloud project. An empty value is ignored.
func WithProject(project string) Option {
	return func(p *Provider) {
		if project != "" {
			p.project = project
		}
	}
}

// WithLocation overrides the Google Cloud location. An empty value is
// ignored.
func WithLocation(location string) Option {
	return func(p *Provider) {
		if location != "" {
			p.location = location
		}
	}
}

// New constructs the adapter. Project and location fall back to the
// GOOGLE_CLOUD_PROJECT and GOOGLE_CLOUD_LOCATION environment variables and
// then to the deployment defaults. The Vertex AI client is not created
// until the first call.
func New(logger *slog.Logger, opts ...Option) *Provider {
	p := &Provider{
		logger: logger,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.project == "" {
		p.project = envOr("GOOGLE_CLOUD_PROJECT", defaultProject)
	}
	if p.location == "" {
		p.location = envOr("GOOGLE_CLOUD_LOCATION", defaultLocation)
	}
	p.prices = modelPricing.ForModel(p.model, defaultPricing)
	return p
}

// Name identifies this adapter.
func (p *Provider) Name() string { return ProviderName }

// Model is the model this adapter calls.
func (p *Provider) Model() string { return p.model }

// Prices is the pricing in effect for the configured model.
func (p *Provider) Prices() llm.Pricing { return p.prices }

// Generate delegates to the shared generation algorithm with this adapter
// as the vendor plug-point.
func (p *Provider) Generate(ctx context.Context, systemPrompt, userContent string, cfg *llm.Config) *llm.Response {
	return llm.Generate(ctx, p, p.logger, systemPrompt, userContent, cfg)
}

// getClient builds the Vertex AI client on first use.
func (p *Provider) getClient(ctx context.Context) (*genai.Client, error) {
	p.clientOnce.Do(func() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  p.project,
			Location: p.location,
		})
		if err != nil {
			p.clientErr = fmt.Errorf("%w: failed to create Gemini client: %v", llm.ErrInvalidConfig, err)
			return
		}
		p.client = client
	})
	return p.client, p.clientErr
}

// Call performs one raw generate-content request.
func (p *Provider) Call(ctx context.Context, messages []llm.Message, cfg *llm.Config) (llm.RawResult, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return llm.RawResult{}, err
	}

	system, user := flatten(messages)

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(cfg.Temperature)),
		MaxOutputTokens: int32(cfg.MaxTokens),
	}
	if system != "" {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if cfg.JSONMode {
		genCfg.ResponseMIMEType = "application/json"
	}

	resp, err := client.Models.GenerateContent(ctx, p.model, genai.Text(user), genCfg)
	if err != nil {
		return llm.RawResult{}, fmt.Errorf("gemini API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return llm.RawResult{}, fmt.Errorf("gemini returned no candidates")
	}

	if reason := string(resp.Candidates[0].FinishReason); truncatedFinishReason(reason) {
		p.logger.WarnContext(ctx, "gemini response truncated at output limit",
			"finish_reason", reason,
			"max_tokens", cfg.MaxTokens)
		return llm.RawResult{}, fmt.Errorf("%w: max output tokens reached (finish_reason=%s)",
			llm.ErrTruncatedResponse, reason)
	}

	raw := extractText(resp)

	// Second-line defense against silent truncation: a JSON-mode payload
	// that opens an object or array but never closes it.
	if cfg.JSONMode && looksTruncatedJSON(raw) {
		p.logger.WarnContext(ctx, "gemini JSON payload appears incomplete",
			"length", len(raw))
		return llm.RawResult{}, fmt.Errorf("%w: JSON payload opens but never closes (length=%d)",
			llm.ErrTruncatedResponse, len(raw))
	}

	var promptTokens, completionTokens int
	if resp.UsageMetadata != nil {
		promptTokens = int(resp.UsageMetadata.PromptTokenCount)
		completionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return llm.RawResult{
		Text:             raw,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	}, nil
}

// IsAvailable reports whether a Vertex AI client can be initialized for the
// configured project and location.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.getClient(ctx)
	return err == nil
}

// flatten collapses the message list into one system instruction and one
// user turn; Gemini calls here carry no multi-turn structure.
func flatten(messages []llm.Message) (system, user string) {
	var sys, usr []string
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			sys = append(sys, m.Content)
		} else {
			usr = append(usr, m.Content)
		}
	}
	return strings.Join(sys, "\n"), strings.Join(usr, "\n")
}

// truncatedFinishReason reports whether the vendor stopped generation at an
// output-length limit. "2" is the numeric MAX_TOKENS code used by older API
// surfaces.
func truncatedFinishReason(reason string) bool {
	if reason == "" {
		return false
	}
	upper := strings.ToUpper(reason)
	for _, marker := range truncationMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return upper == "2"
}

// looksTruncatedJSON reports whether text opens a JSON object or array
// without closing one.
func looksTruncatedJSON(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	opens := strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
	closes := strings.HasSuffix(trimmed, "}") || strings.HasSuffix(trimmed, "]")
	return opens && !closes
}

func extractText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
