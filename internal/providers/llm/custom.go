package llm

import (
	"context"
	"time"

	"github.com/sandevgo/ceramicsrag/internal/core"
)

// CustomOpenAI talks to any server exposing the OpenAI chat completions API.
type CustomOpenAI struct {
	*OpenAICompatible
}

func NewCustomOpenAI(baseURL, apiKey, model string, timeout time.Duration) *CustomOpenAI {
	return &CustomOpenAI{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      model,
			Timeout:    timeout,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}

func (c *CustomOpenAI) Models(ctx context.Context) ([]core.Model, error) {
	models, err := c.listModels(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return models, nil
}
