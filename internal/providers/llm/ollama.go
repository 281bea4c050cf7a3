package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sandevgo/ceramicsrag/internal/core"
)

// ollamaContextLength is assumed since /api/tags does not report it.
const ollamaContextLength = 32768

type Ollama struct {
	*OpenAICompatible
}

func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL: baseURL,
			Model:   model,
			Timeout: timeout,
		}),
	}
}

func (o *Ollama) Models(ctx context.Context) ([]core.Model, error) {
	resp, err := o.doRequest(ctx, http.MethodGet, "/api/tags", nil, nil)
	if err != nil {
		return nil, unavailable(fmt.Errorf("ollama not available: %w", err))
	}
	defer resp.Body.Close()

	data, err := readOK(resp)
	if err != nil {
		return nil, unavailable(err)
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, unavailable(fmt.Errorf("decode: %w", err))
	}

	models := make([]core.Model, 0, len(result.Models))
	for _, m := range result.Models {
		models = append(models, core.Model{
			ID:            m.Name,
			Name:          m.Name,
			ContextLength: ollamaContextLength,
		})
	}
	return models, nil
}
