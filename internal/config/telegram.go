package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/matgram/pkg/log"
)

type TelegramConfig struct {
	APIID    int    `env:"MATGRAM_TELEGRAM_API_ID,required"`
	APIHash  string `env:"MATGRAM_TELEGRAM_API_HASH,required,notEmpty"`
	BotToken string `env:"MATGRAM_RELAY_BOT_TOKEN"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}
