package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/ceramicsrag/internal/config"
	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/pkg/log"
)

type Provider interface {
	core.ChatModel
	core.ModelLister
	Model() string
}

// NewProvider creates the chat provider selected by cfg.
func NewProvider(ctx context.Context, cfg config.ProviderConfig) (Provider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, cfg.Timeout), nil
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model, cfg.Timeout), nil
	case config.ProviderOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, errors.New("OPENROUTER_API_KEY is required for the openrouter provider")
		}
		return NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Model, cfg.Timeout), nil
	case config.ProviderOllama:
		return NewOllama(cfg.OllamaBaseURL, cfg.Model, cfg.Timeout), nil
	case config.ProviderCustom:
		if cfg.CustomBaseURL == "" {
			return nil, errors.New("CUSTOM_LLM_BASE_URL is required for the custom provider")
		}
		return NewCustomOpenAI(cfg.CustomBaseURL, cfg.CustomAPIKey, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
