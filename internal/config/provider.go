package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/ceramicsrag/pkg/log"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderAnthropic  = "anthropic"
	ProviderCustom     = "custom"
)

// ProviderConfig selects the chat and embedding backends.
type ProviderConfig struct {
	Provider string        `env:"LLM_PROVIDER" envDefault:"openai"`
	Model    string        `env:"LLM_MODEL" envDefault:"gpt-4.1-mini"`
	Timeout  time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	OpenAIAPIKey     string `env:"OPENAI_API_KEY" secret:"true"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY" secret:"true"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY" secret:"true"`
	OllamaBaseURL    string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	CustomBaseURL    string `env:"CUSTOM_LLM_BASE_URL"`
	CustomAPIKey     string `env:"CUSTOM_LLM_API_KEY" secret:"true"`

	EmbeddingModel   string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingBaseURL string `env:"EMBEDDING_BASE_URL" envDefault:"https://api.openai.com/v1"`
	// EmbeddingAPIKey falls back to OPENAI_API_KEY.
	EmbeddingAPIKey string `env:"EMBEDDING_API_KEY" secret:"true"`
}

func ParseProviderConfig() (*ProviderConfig, error) {
	c := &ProviderConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if c.EmbeddingAPIKey == "" {
		c.EmbeddingAPIKey = c.OpenAIAPIKey
	}
	return c, nil
}

func NewProviderConfig(ctx context.Context) *ProviderConfig {
	c, err := ParseProviderConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Provider config")
	}
	return c
}
