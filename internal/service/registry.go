package service

import (
	"log/slog"

	"github.com/trooth/llm-service/internal/config"
	"github.com/trooth/llm-service/internal/llm"
	"github.com/trooth/llm-service/internal/platform/gemini"
	"github.com/trooth/llm-service/internal/platform/openai"
)

// factoryOptions carries the knobs a provider factory may honor. Empty
// strings mean "use the adapter's own default or environment fallback".
type factoryOptions struct {
	model  string
	logger *slog.Logger
	creds  config.LLMConfig
}

type providerFactory func(opts factoryOptions) llm.Generator

// registry is the closed set of provider identifiers this service can
// construct.
var registry = map[string]providerFactory{
	openai.ProviderName: func(o factoryOptions) llm.Generator {
		return openai.New(o.logger,
			openai.WithModel(o.model),
			openai.WithAPIKey(o.creds.OpenAIAPIKey),
		)
	},
	gemini.ProviderName: func(o factoryOptions) llm.Generator {
		return gemini.New(o.logger,
			gemini.WithModel(o.model),
			gemini.WithProject(o.creds.GoogleCloudProject),
			gemini.WithLocation(o.creds.GoogleCloudLocation),
		)
	},
}

// fallbackFor returns the other of the two registered providers.
func fallbackFor(name string) string {
	if name == gemini.ProviderName {
		return openai.ProviderName
	}
	return gemini.ProviderName
}
