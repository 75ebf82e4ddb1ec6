package openai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/trooth/llm-service/internal/llm"
)

const (
	// ProviderName is the registry identifier for this adapter.
	ProviderName = "openai"

	// DefaultModel is used when no model override is configured.
	DefaultModel = "gpt-4o"

	// placeholderPrefix marks an unfilled key copied from an env template.
	placeholderPrefix = "your_"
)

// defaultPricing applies to models missing from modelPricing.
// USD per 1M tokens, January 2026 price sheet.
var defaultPricing = llm.Pricing{InputPer1M: 0.15, OutputPer1M: 0.60}

var modelPricing = llm.PriceTable{
	"gpt-4o-mini": {InputPer1M: 0.15, OutputPer1M: 0.60},
	"gpt-4o":      {InputPer1M: 2.50, OutputPer1M: 10.00},
	"gpt-4-turbo": {InputPer1M: 10.00, OutputPer1M: 30.00},
}

// Provider is the commercial hosted-model adapter. It is immutable after
// construction apart from the lazily created client handle.
type Provider struct {
	logger *slog.Logger
	model  string
	apiKey string
	prices llm.Pricing

	clientOnce sync.Once
	client     *oai.Client
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

// WithAPIKey supplies the API key explicitly instead of reading
// OPENAI_API_KEY. An empty value is ignored.
func WithAPIKey(key string) Option {
	return func(p *Provider) {
		if key != "" {
			p.apiKey = key
		}
	}
}

// New constructs the adapter. The HTTP client is not created until the
// first call, so construction never fails on missing credentials; a missing
// or placeholder key surfaces as an error from Call instead.
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
	if p.apiKey == "" {
		p.apiKey = os.Getenv("OPENAI_API_KEY")
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

// getClient builds the API client on first use.
func (p *Provider) getClient() (*oai.Client, error) {
	p.clientOnce.Do(func() {
		if !keyUsable(p.apiKey) {
			p.clientErr = fmt.Errorf("%w: OpenAI API key not configured", llm.ErrInvalidConfig)
			return
		}
		client := oai.NewClient(option.WithAPIKey(p.apiKey))
		p.client = &client
	})
	return p.client, p.clientErr
}

// Call performs one raw chat-completion request.
func (p *Provider) Call(ctx context.Context, messages []llm.Message, cfg *llm.Config) (llm.RawResult, error) {
	client, err := p.getClient()
	if err != nil {
		return llm.RawResult{}, err
	}

	params := oai.ChatCompletionNewParams{
		Model:               oai.ChatModel(p.model),
		Messages:            toChatMessages(messages),
		Temperature:         oai.Float(cfg.Temperature),
		MaxCompletionTokens: oai.Int(int64(cfg.MaxTokens)),
	}
	if cfg.JSONMode {
		params.ResponseFormat = oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llm.RawResult{}, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llm.RawResult{}, fmt.Errorf("openai returned no choices")
	}

	return llm.RawResult{
		Text:             strings.TrimSpace(resp.Choices[0].Message.Content),
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
	}, nil
}

// IsAvailable reports whether the adapter has a usable credential.
func (p *Provider) IsAvailable(_ context.Context) bool {
	if !keyUsable(p.apiKey) {
		return false
	}
	_, err := p.getClient()
	return err == nil
}

func keyUsable(key string) bool {
	return key != "" && !strings.HasPrefix(key, placeholderPrefix)
}

func toChatMessages(messages []llm.Message) []oai.ChatCompletionMessageParamUnion {
	out := make([]oai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			out = append(out, oai.SystemMessage(m.Content))
		default:
			out = append(out, oai.UserMessage(m.Content))
		}
	}
	return out
}
