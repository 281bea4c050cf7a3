package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/ceramicsrag/internal/config"
	"github.com/sandevgo/ceramicsrag/internal/index"
	"github.com/sandevgo/ceramicsrag/internal/providers/embedding"
	"github.com/sandevgo/ceramicsrag/internal/providers/hub"
	"github.com/sandevgo/ceramicsrag/internal/providers/llm"
	"github.com/sandevgo/ceramicsrag/internal/service/rag"
	"github.com/sandevgo/ceramicsrag/internal/service/session"
	"github.com/sandevgo/ceramicsrag/internal/storage/sqlite"
	"github.com/sandevgo/ceramicsrag/pkg/log"
	"github.com/sandevgo/ceramicsrag/pkg/tokens"
)

// pipeline is everything needed to answer questions.
type pipeline struct {
	app      *config.AppConfig
	provider *config.ProviderConfig

	model        *llm.DynamicProvider
	index        *index.Flat
	orchestrator *rag.Orchestrator
}

func loadEnv(ctx context.Context) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to init env")
	}
}

func newPipeline(ctx context.Context) (*pipeline, error) {
	loadEnv(ctx)

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	provCfg := config.NewProviderConfig(ctx)
	idxCfg := config.NewIndexConfig(ctx)

	// 2. Embeddings and index
	embedder, err := newEmbedder(provCfg)
	if err != nil {
		return nil, err
	}

	path, err := resolveIndexPath(ctx, appCfg, idxCfg)
	if err != nil {
		return nil, err
	}

	idx, err := index.Open(ctx, path, embedder.Model())
	if err != nil {
		return nil, err
	}

	// 3. Chat model
	model, err := llm.NewDynamicProvider(ctx, *provCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	// 4. Orchestration
	counter, err := tokens.NewCounter(appCfg.TokenEncoding)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("encoding", appCfg.TokenEncoding).Msg("tokenizer unavailable, estimating history size")
	}

	retriever, err := rag.NewRetriever(embedder, idx, appCfg.TopK)
	if err != nil {
		return nil, err
	}

	orch, err := rag.NewOrchestrator(retriever, rag.NewPrompter(appCfg.HistoryMaxTokens, counter), model, appCfg.TopK)
	if err != nil {
		return nil, err
	}

	return &pipeline{
		app:          appCfg,
		provider:     provCfg,
		model:        model,
		index:        idx,
		orchestrator: orch.WithObserver(rag.LogObserver{}),
	}, nil
}

// openSessions opens the history database. The caller closes the returned db.
func (p *pipeline) openSessions(ctx context.Context) (*session.Manager, *sql.DB, error) {
	db, err := sqlite.NewDB(ctx, p.app.GetDatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return session.NewManager(sqlite.NewMessagesRepo(db), p.orchestrator, 0), db, nil
}

func newEmbedder(cfg *config.ProviderConfig) (*embedding.OpenAI, error) {
	if cfg.EmbeddingAPIKey == "" && cfg.EmbeddingBaseURL == embedding.DefaultBaseURL {
		return nil, errors.New("EMBEDDING_API_KEY or OPENAI_API_KEY is required for embeddings")
	}
	return embedding.NewOpenAI(embedding.Config{
		BaseURL: cfg.EmbeddingBaseURL,
		APIKey:  cfg.EmbeddingAPIKey,
		Model:   cfg.EmbeddingModel,
		Timeout: cfg.Timeout,
	}), nil
}

// resolveIndexPath prefers INDEX_PATH and otherwise downloads the artifact
// into the runtime cache.
func resolveIndexPath(ctx context.Context, app *config.AppConfig, cfg *config.IndexConfig) (string, error) {
	if cfg.Path != "" {
		return cfg.Path, nil
	}
	client := hub.NewClient(cfg.HubEndpoint, cfg.HubToken, app.GetCachePath())
	return client.Fetch(ctx, cfg.Repo, cfg.Revision, cfg.Filename)
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
