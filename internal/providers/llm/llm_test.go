package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandevgo/ceramicsrag/internal/config"
	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTurns = []core.Turn{
	{Role: core.RoleSystem, Content: "Context:\nCone 10 is about 1300C."},
	{Role: core.RoleUser, Content: "How hot is cone 10?"},
}

func TestOpenAICompatible_Chat(t *testing.T) {
	var got struct {
		Model    string        `json:"model"`
		Messages []wireMessage `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "ceramics", r.Header.Get("X-Title"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"About 1300C."}}]}`)
	}))
	defer srv.Close()

	p := NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:      srv.URL + "/",
		APIKey:       "sk-test",
		Model:        "gpt-4.1-mini",
		AuthHeader:   "Authorization",
		AuthPrefix:   "Bearer ",
		ExtraHeaders: map[string]string{"X-Title": "ceramics"},
	})

	text, err := p.Chat(context.Background(), testTurns)
	require.NoError(t, err)
	assert.Equal(t, "About 1300C.", text)
	assert.Equal(t, "gpt-4.1-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, core.RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "How hot is cone 10?", got.Messages[1].Content)
}

func TestOpenAICompatible_ChatFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid key"}`, http.StatusUnauthorized)
		}},
		{"quota", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"choices":`)
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"choices":[]}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				tt.handler(w, r)
			}))
			defer srv.Close()

			p := NewCustomOpenAI(srv.URL, "k", "m", time.Second)
			_, err := p.Chat(context.Background(), testTurns)
			assert.ErrorIs(t, err, core.ErrModelUnavailable)
			assert.Equal(t, 1, calls, "model calls are never retried")
		})
	}
}

func TestOpenAICompatible_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewCustomOpenAI(url, "", "m", time.Second).Chat(context.Background(), testTurns)
	assert.ErrorIs(t, err, core.ErrModelUnavailable)
}

func TestOpenAI_ModelsFiltersNonChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":[{"id":"text-embedding-3-small"},{"id":"gpt-4.1-mini"},{"id":"gpt-4.1"},{"id":"whisper-1"}]}`)
	}))
	defer srv.Close()

	p := NewOpenAI("sk", "gpt-4.1-mini", time.Second)
	p.baseURL = srv.URL

	models, err := p.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gpt-4.1", models[0].ID)
	assert.Equal(t, "gpt-4.1-mini", models[1].Name)
}

func TestOllama_Models(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = io.WriteString(w, `{"models":[{"name":"llama3.1:8b"}]}`)
	}))
	defer srv.Close()

	models, err := NewOllama(srv.URL, "llama3.1:8b", time.Second).Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, ollamaContextLength, models[0].ContextLength)
}

func TestAnthropic_ChatSystemField(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"content":[{"type":"text","text":"About "},{"type":"text","text":"1300C."}]}`)
	}))
	defer srv.Close()

	a := NewAnthropic("ak", "claude-sonnet", time.Second)
	a.baseURL = srv.URL

	text, err := a.Chat(context.Background(), testTurns)
	require.NoError(t, err)
	assert.Equal(t, "About 1300C.", text)
	assert.Equal(t, "Context:\nCone 10 is about 1300C.", got["system"])

	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 1)
}

func TestAnthropic_ModelsPaginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("after_id") == "" {
			_, _ = io.WriteString(w, `{"data":[{"id":"a","display_name":"A","type":"model"}],"has_more":true,"last_id":"a"}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":[{"id":"b","display_name":"B","type":"model"}],"has_more":false}`)
	}))
	defer srv.Close()

	a := NewAnthropic("ak", "a", time.Second)
	a.baseURL = srv.URL

	models, err := a.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Model{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, models)
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ProviderConfig
		wantErr bool
	}{
		{"openai", config.ProviderConfig{Provider: config.ProviderOpenAI, OpenAIAPIKey: "sk"}, false},
		{"openai without key", config.ProviderConfig{Provider: config.ProviderOpenAI}, true},
		{"anthropic", config.ProviderConfig{Provider: config.ProviderAnthropic, AnthropicAPIKey: "ak"}, false},
		{"openrouter without key", config.ProviderConfig{Provider: config.ProviderOpenRouter}, true},
		{"ollama", config.ProviderConfig{Provider: config.ProviderOllama, OllamaBaseURL: "http://localhost:11434"}, false},
		{"custom without url", config.ProviderConfig{Provider: config.ProviderCustom}, true},
		{"unknown", config.ProviderConfig{Provider: "bard"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(context.Background(), tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}

func TestDynamicProvider_SetModel(t *testing.T) {
	cfg := config.ProviderConfig{Provider: config.ProviderOllama, OllamaBaseURL: "http://localhost:11434", Model: "llama3.1:8b"}
	d, err := NewDynamicProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "llama3.1:8b", d.Model())

	require.NoError(t, d.SetModel(context.Background(), "qwen2.5:7b"))
	assert.Equal(t, "qwen2.5:7b", d.Model())

	d.config.Provider = "unknown"
	assert.Error(t, d.SetModel(context.Background(), "x"))
	assert.Equal(t, "qwen2.5:7b", d.Model())
}
