package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trooth/llm-service/internal/config"
	"github.com/trooth/llm-service/internal/llm"
	"github.com/trooth/llm-service/internal/platform/gemini"
	"github.com/trooth/llm-service/internal/platform/openai"
)

// fakeGenerator scripts a provider's Generate outcome and counts calls.
type fakeGenerator struct {
	name      string
	model     string
	resp      *llm.Response
	available bool
	calls     int
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string, _ *llm.Config) *llm.Response {
	f.calls++
	return f.resp
}

func (f *fakeGenerator) IsAvailable(_ context.Context) bool { return f.available }
func (f *fakeGenerator) Name() string                       { return f.name }
func (f *fakeGenerator) Model() string                      { return f.model }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func successResponse(provider, model string) *llm.Response {
	return &llm.Response{
		Success:  true,
		Content:  map[string]any{"score": float64(80)},
		Provider: provider,
		Model:    model,
	}
}

func failureResponse(provider, model, msg string) *llm.Response {
	return &llm.Response{
		Success:  false,
		Provider: provider,
		Model:    model,
		Error:    msg,
	}
}

// newTestService wires a Service around fake providers, bypassing the
// registry factories.
func newTestService(primary, fallback llm.Generator, fallbackEnabled bool) *Service {
	s := &Service{
		logger:          testLogger(),
		primaryName:     "gemini",
		fallbackEnabled: fallbackEnabled,
	}
	s.primaryOnce.Do(func() { s.primary = primary })
	s.fallbackOnce.Do(func() { s.fallback = fallback })
	return s
}

func TestGeneratePrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &fakeGenerator{name: "gemini", resp: successResponse("gemini", "gemini-2.5-flash")}
	fallback := &fakeGenerator{name: "openai", resp: successResponse("openai", "gpt-4o")}
	svc := newTestService(primary, fallback, true)

	resp := svc.Generate(context.Background(), "s", "u", nil)

	require.True(t, resp.Success)
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, fallback.calls)
}

func TestGenerateFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := &fakeGenerator{name: "gemini", resp: failureResponse("gemini", "gemini-2.5-flash", "503 from vendor")}
	fallback := &fakeGenerator{name: "openai", resp: successResponse("openai", "gpt-4o")}
	svc := newTestService(primary, fallback, true)

	resp := svc.Generate(context.Background(), "s", "u", nil)

	require.True(t, resp.Success)
	// The response identifies the adapter that actually produced it.
	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestGenerateBothProvidersFail(t *testing.T) {
	t.Parallel()

	primary := &fakeGenerator{name: "gemini", resp: failureResponse("gemini", "gemini-2.5-flash", "quota exhausted")}
	fallback := &fakeGenerator{name: "openai", resp: failureResponse("openai", "gpt-4o", "API key not configured")}
	svc := newTestService(primary, fallback, true)

	resp := svc.Generate(context.Background(), "s", "u", nil)

	require.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	// The primary's failure is what the caller sees.
	assert.Equal(t, "gemini", resp.Provider)
	assert.Contains(t, resp.Error, "quota exhausted")
}

func TestGenerateFallbackDisabled(t *testing.T) {
	t.Parallel()

	primary := &fakeGenerator{name: "gemini", resp: failureResponse("gemini", "gemini-2.5-flash", "boom")}
	fallback := &fakeGenerator{name: "openai", resp: successResponse("openai", "gpt-4o")}
	svc := newTestService(primary, fallback, false)

	resp := svc.Generate(context.Background(), "s", "u", nil)

	assert.False(t, resp.Success)
	assert.Zero(t, fallback.calls)
}

func TestGenerateNoFallbackSuppressesConfiguredFallback(t *testing.T) {
	t.Parallel()

	primary := &fakeGenerator{name: "gemini", resp: failureResponse("gemini", "gemini-2.5-flash", "boom")}
	fallback := &fakeGenerator{name: "openai", resp: successResponse("openai", "gpt-4o")}
	svc := newTestService(primary, fallback, true)

	resp := svc.GenerateNoFallback(context.Background(), "s", "u", nil)

	assert.False(t, resp.Success)
	assert.Zero(t, fallback.calls)
}

func TestGenerateSynthesizesResponseWhenNothingUsable(t *testing.T) {
	t.Parallel()

	// Unregistered primary and no usable fallback: the service fabricates
	// the terminal failure itself.
	s := &Service{
		logger:          testLogger(),
		primaryName:     "nonexistent",
		fallbackEnabled: false,
	}

	resp := s.Generate(context.Background(), "s", "u", nil)

	require.False(t, resp.Success)
	assert.Equal(t, "All LLM providers failed", resp.Error)
	assert.Equal(t, "nonexistent", resp.Provider)
	assert.Equal(t, "unknown", resp.Model)
}

func TestGenerateTruncationExhaustionThenFallback(t *testing.T) {
	t.Parallel()

	// The cloud adapter reported truncation on every attempt until the
	// retry budget ran out; the commercial adapter rescues the call.
	primary := &fakeGenerator{
		name: "gemini",
		resp: failureResponse("gemini", "gemini-2.5-flash",
			"model response truncated: max output tokens reached (finish_reason=MAX_TOKENS)"),
	}
	fallback := &fakeGenerator{name: "openai", resp: successResponse("openai", "gpt-4o")}
	svc := newTestService(primary, fallback, true)

	resp := svc.Generate(context.Background(), "s", "u", nil)

	require.True(t, resp.Success)
	assert.Equal(t, "openai", resp.Provider)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	_, err := New(config.LLMConfig{Provider: "acme-llm"}, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrInvalidConfig)
}

func TestNewAppliesOverrides(t *testing.T) {
	t.Parallel()

	cfg := config.LLMConfig{Provider: "gemini", Model: "gemini-2.5-pro", FallbackEnabled: true}

	svc, err := New(cfg, testLogger(),
		WithProvider("openai"),
		WithModel("gpt-4o-mini"),
		WithFallback(false),
	)
	require.NoError(t, err)

	assert.Equal(t, "openai", svc.primaryName)
	assert.Equal(t, "gpt-4o-mini", svc.model)
	assert.False(t, svc.fallbackEnabled)
}

func TestFallbackUsesItsOwnDefaultModel(t *testing.T) {
	t.Parallel()

	svc, err := New(config.LLMConfig{Provider: "gemini", Model: "gemini-2.5-pro", FallbackEnabled: true}, testLogger())
	require.NoError(t, err)

	fb := svc.fallbackProvider()
	require.NotNil(t, fb)
	assert.Equal(t, openai.ProviderName, fb.Name())
	// The primary's model override does not carry over.
	assert.Equal(t, openai.DefaultModel, fb.Model())
}

func TestFallbackFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, openai.ProviderName, fallbackFor(gemini.ProviderName))
	assert.Equal(t, gemini.ProviderName, fallbackFor(openai.ProviderName))
}

func TestGetAvailableProvidersProbesEveryRegisteredAdapter(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	svc, err := New(config.LLMConfig{Provider: "gemini"}, testLogger())
	require.NoError(t, err)

	status := svc.GetAvailableProviders(context.Background())

	assert.Len(t, status, 2)
	assert.Contains(t, status, openai.ProviderName)
	assert.Contains(t, status, gemini.ProviderName)
	// Without a credential the commercial adapter must report unavailable.
	assert.False(t, status[openai.ProviderName])
}

func TestIsAvailableConsultsFallbackOnlyWhenEnabled(t *testing.T) {
	t.Parallel()

	primary := &fakeGenerator{name: "gemini", available: false}
	fallback := &fakeGenerator{name: "openai", available: true}

	enabled := newTestService(primary, fallback, true)
	assert.True(t, enabled.IsAvailable(context.Background()))

	disabled := newTestService(primary, fallback, false)
	assert.False(t, disabled.IsAvailable(context.Background()))
}
