package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/ceramicsrag/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"CERAMICS_RUNTIME_PATH" envDefault:".ceramics"`

	// Retrieval
	TopK int `env:"RETRIEVAL_TOP_K" envDefault:"8"`

	// Context Management. Zero disables the history budget.
	HistoryMaxTokens int    `env:"HISTORY_MAX_TOKENS" envDefault:"6000"`
	TokenEncoding    string `env:"TOKEN_ENCODING" envDefault:"cl100k_base"`
}

func ParseAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := ParseAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "history.db")
}

func (c AppConfig) GetCachePath() string {
	return filepath.Join(c.RuntimePath, "cache")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}
