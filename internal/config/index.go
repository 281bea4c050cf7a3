package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/ceramicsrag/pkg/log"
)

// IndexConfig locates the index artifact. A non-empty Path skips the download.
type IndexConfig struct {
	Path     string `env:"INDEX_PATH"`
	Repo     string `env:"INDEX_REPO" envDefault:"rachq/rag-ceramics"`
	Revision string `env:"INDEX_REVISION" envDefault:"main"`
	Filename string `env:"INDEX_FILENAME" envDefault:"index.db"`

	HubEndpoint string `env:"HF_ENDPOINT" envDefault:"https://huggingface.co"`
	HubToken    string `env:"HF_TOKEN" secret:"true"`
}

func ParseIndexConfig() (*IndexConfig, error) {
	c := &IndexConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func NewIndexConfig(ctx context.Context) *IndexConfig {
	c, err := ParseIndexConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Index config")
	}
	return c
}
