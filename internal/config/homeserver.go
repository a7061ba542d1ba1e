package config

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/matgram/pkg/log"
)

type HomeserverConfig struct {
	Address      string `env:"MATGRAM_HOMESERVER_ADDRESS,required,notEmpty"`
	Domain       string `env:"MATGRAM_HOMESERVER_DOMAIN,required,notEmpty"`
	ASToken      string `env:"MATGRAM_AS_TOKEN,required,notEmpty"`
	HSToken      string `env:"MATGRAM_HS_TOKEN,required,notEmpty"`
	ListenAddr   string `env:"MATGRAM_LISTEN_ADDR" envDefault:":29317"`
	BotLocalpart string `env:"MATGRAM_BOT_LOCALPART" envDefault:"telegrambot"`
}

func NewHomeserverConfig(ctx context.Context) *HomeserverConfig {
	c := &HomeserverConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Homeserver config")
	}
	return c
}

func (c HomeserverConfig) GetAddress() string {
	return c.Address
}

func (c HomeserverConfig) GetDomain() string {
	return c.Domain
}

func (c HomeserverConfig) GetASToken() string {
	return c.ASToken
}

func (c HomeserverConfig) GetHSToken() string {
	return c.HSToken
}

func (c HomeserverConfig) BotMXID() string {
	return fmt.Sprintf("@%s:%s", c.BotLocalpart, c.Domain)
}
