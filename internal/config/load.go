package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables that populate
// them.
var envBindings = map[string]string{
	"llm.provider":              "LLM_PROVIDER",
	"llm.model":                 "LLM_MODEL",
	"llm.fallback_enabled":      "LLM_FALLBACK_ENABLED",
	"llm.openai_api_key":        "OPENAI_API_KEY",
	"llm.google_cloud_project":  "GOOGLE_CLOUD_PROJECT",
	"llm.google_cloud_location": "GOOGLE_CLOUD_LOCATION",
	"log.level":                 "LLM_LOG_LEVEL",
}

// Load reads configuration from environment variables and an optional
// llm-service.yaml file in the working directory, then validates the result.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.fallback_enabled", true)
	v.SetDefault("log.level", "info")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetConfigName("llm-service")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
