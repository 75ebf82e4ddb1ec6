package config

// Config holds all service configuration.
type Config struct {
	LLM LLMConfig `mapstructure:"llm" validate:"required"`
	Log LogConfig `mapstructure:"log" validate:"required"`
}

// LLMConfig contains provider selection, model override, fallback policy,
// and vendor credentials.
type LLMConfig struct {
	// Provider selects the primary adapter.
	Provider string `mapstructure:"provider" validate:"required,oneof=gemini openai"`

	// Model overrides the primary adapter's default model. The fallback
	// adapter always uses its own default regardless of this setting.
	Model string `mapstructure:"model"`

	// FallbackEnabled allows the service to try the other provider when the
	// primary fails.
	FallbackEnabled bool `mapstructure:"fallback_enabled"`

	// OpenAIAPIKey authenticates the commercial adapter.
	OpenAIAPIKey string `mapstructure:"openai_api_key"`

	// GoogleCloudProject and GoogleCloudLocation place the cloud-platform
	// adapter. Empty values fall back to the adapter's own env defaults.
	GoogleCloudProject  string `mapstructure:"google_cloud_project"`
	GoogleCloudLocation string `mapstructure:"google_cloud_location"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}
