package config

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/ceramicsrag/pkg/log"
)

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" envDefault:"localhost"`
	Port         int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"120s"`
}

func ParseServerConfig() (*ServerConfig, error) {
	c := &ServerConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func NewServerConfig(ctx context.Context) *ServerConfig {
	c, err := ParseServerConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Server config")
	}
	return c
}

func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
