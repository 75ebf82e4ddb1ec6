package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/trooth/llm-service/internal/config"
	"github.com/trooth/llm-service/internal/llm"
	"github.com/trooth/llm-service/internal/redact"
)

// Service sequences a configured primary provider and, when enabled, a
// single fallback provider (always the other of the two registered
// adapters). Both providers are constructed lazily and reused for the life
// of the Service.
type Service struct {
	logger          *slog.Logger
	primaryName     string
	model           string
	fallbackEnabled bool
	creds           config.LLMConfig

	primaryOnce sync.Once
	primary     llm.Generator
	primaryErr  error

	fallbackOnce sync.Once
	fallback     llm.Generator
}

// Option overrides a setting read from configuration.
type Option func(*Service)

// WithProvider overrides the primary provider identifier. An empty value is
// ignored.
func WithProvider(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.primaryName = name
		}
	}
}

// WithModel overrides the primary adapter's model. An empty value is
// ignored. The fallback adapter is unaffected and keeps its own default.
func WithModel(model string) Option {
	return func(s *Service) {
		if model != "" {
			s.model = model
		}
	}
}

// WithFallback enables or disables the fallback provider.
func WithFallback(enabled bool) Option {
	return func(s *Service) {
		s.fallbackEnabled = enabled
	}
}

// New constructs a Service from configuration, applying any explicit
// overrides on top. It fails when the resulting primary provider identifier
// is not registered.
func New(cfg config.LLMConfig, logger *slog.Logger, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		logger:          logger,
		primaryName:     cfg.Provider,
		model:           cfg.Model,
		fallbackEnabled: cfg.FallbackEnabled,
		creds:           cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, ok := registry[s.primaryName]; !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", llm.ErrInvalidConfig, s.primaryName)
	}

	logger.Info("llm service initialized",
		"primary", s.primaryName,
		"model", orDefault(s.model),
		"fallback_enabled", s.fallbackEnabled)

	return s, nil
}

// Generate runs the primary provider and, when it fails and fallback is
// enabled, the fallback provider. The returned Response identifies which
// adapter actually produced it.
func (s *Service) Generate(ctx context.Context, systemPrompt, userContent string, cfg *llm.Config) *llm.Response {
	return s.generate(ctx, systemPrompt, userContent, cfg, true)
}

// GenerateNoFallback runs the primary provider only, even when fallback is
// configured.
func (s *Service) GenerateNoFallback(ctx context.Context, systemPrompt, userContent string, cfg *llm.Config) *llm.Response {
	return s.generate(ctx, systemPrompt, userContent, cfg, false)
}

func (s *Service) generate(ctx context.Context, systemPrompt, userContent string, cfg *llm.Config, useFallback bool) *llm.Response {
	logger := s.logger.With("request_id", uuid.New().String())

	var primaryResp *llm.Response
	primary, err := s.primaryProvider()
	if err != nil {
		logger.WarnContext(ctx, "primary provider unavailable",
			"provider", s.primaryName,
			"error", redact.Error(err))
	} else {
		primaryResp = primary.Generate(ctx, systemPrompt, userContent, cfg)
		if primaryResp.Success {
			return primaryResp
		}
		logger.WarnContext(ctx, "primary provider failed",
			"provider", primaryResp.Provider,
			"error", redact.String(primaryResp.Error))
	}

	// Fallback is attempted at most once per call, never once per retry.
	if useFallback && s.fallbackEnabled {
		if fb := s.fallbackProvider(); fb != nil {
			logger.InfoContext(ctx, "attempting fallback provider", "provider", fb.Name())

			fbResp := fb.Generate(ctx, systemPrompt, userContent, cfg)
			if fbResp.Success {
				logger.InfoContext(ctx, "fallback provider succeeded", "provider", fbResp.Provider)
				return fbResp
			}
			logger.ErrorContext(ctx, "fallback provider failed",
				"provider", fbResp.Provider,
				"error", redact.String(fbResp.Error))
		}
	}

	if primaryResp != nil {
		return primaryResp
	}

	return &llm.Response{
		Success:  false,
		Provider: s.primaryName,
		Model:    orDefault(s.model),
		Error:    "All LLM providers failed",
	}
}

// IsAvailable reports whether the primary — or, when fallback is enabled,
// the fallback — provider can currently initialize.
func (s *Service) IsAvailable(ctx context.Context) bool {
	if primary, err := s.primaryProvider(); err == nil && primary.IsAvailable(ctx) {
		return true
	}
	if s.fallbackEnabled {
		if fb := s.fallbackProvider(); fb != nil && fb.IsAvailable(ctx) {
			return true
		}
	}
	return false
}

// GetAvailableProviders probes a fresh, default-configured instance of every
// registered provider. It is a capability signal only: the configured model
// is not consulted, so a true value does not guarantee that model works.
func (s *Service) GetAvailableProviders(ctx context.Context) map[string]bool {
	status := make(map[string]bool, len(registry))
	for name, factory := range registry {
		provider := factory(factoryOptions{logger: s.logger, creds: s.creds})
		status[name] = provider.IsAvailable(ctx)
	}
	return status
}

func (s *Service) primaryProvider() (llm.Generator, error) {
	s.primaryOnce.Do(func() {
		factory, ok := registry[s.primaryName]
		if !ok {
			s.primaryErr = fmt.Errorf("%w: unknown provider %q", llm.ErrInvalidConfig, s.primaryName)
			return
		}
		s.primary = factory(factoryOptions{
			model:  s.model,
			logger: s.logger,
			creds:  s.creds,
		})
	})
	return s.primary, s.primaryErr
}

// fallbackProvider lazily builds the other registered provider with its own
// default model; a model override configured for the primary does not carry
// over.
func (s *Service) fallbackProvider() llm.Generator {
	s.fallbackOnce.Do(func() {
		factory, ok := registry[fallbackFor(s.primaryName)]
		if !ok {
			return
		}
		s.fallback = factory(factoryOptions{logger: s.logger, creds: s.creds})
	})
	return s.fallback
}

func orDefault(model string) string {
	if model == "" {
		return "unknown"
	}
	return model
}
