package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v9"
	"github.com/sandevgo/matgram/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"MATGRAM_RUNTIME_PATH" envDefault:".matgram"`

	// Transport Flags
	EnableRelayBot bool `env:"MATGRAM_ENABLE_RELAY_BOT" envDefault:"false"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "matgram.db")
}

func (c AppConfig) GetSessionDir() string {
	return filepath.Join(c.RuntimePath, "sessions")
}
