package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Config holds application configuration
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Empty selects an ephemeral in-memory SQLite store, which is a
	// safe default but unsuitable for production.
	DatabaseURL string `env:"DATABASE_URL"`

	// OpenAI settings. An empty key is allowed at startup; the analyze
	// endpoint reports it as a configuration error per call.
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
