package llm

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sandevgo/ceramicsrag/internal/core"
)

const openAIBaseURL = "https://api.openai.com"

type OpenAI struct {
	*OpenAICompatible
}

func NewOpenAI(apiKey, model string, timeout time.Duration) *OpenAI {
	return &OpenAI{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    openAIBaseURL,
			APIKey:     apiKey,
			Model:      model,
			Timeout:    timeout,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}

// Models lists chat-capable models only; embedding, audio and image models are skipped.
func (o *OpenAI) Models(ctx context.Context) ([]core.Model, error) {
	all, err := o.listModels(ctx)
	if err != nil {
		return nil, unavailable(err)
	}

	models := make([]core.Model, 0, len(all))
	for _, m := range all {
		if isChatModel(m.ID) {
			models = append(models, m)
		}
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

var nonChatMarkers = []string{"embedding", "whisper", "tts", "dall-e", "moderation", "transcribe", "image"}

func isChatModel(id string) bool {
	for _, marker := range nonChatMarkers {
		if strings.Contains(id, marker) {
			return false
		}
	}
	return true
}
