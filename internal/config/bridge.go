package config

import (
	"context"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/matgram/pkg/log"
)

type BridgeConfig struct {
	CommandPrefix    string `env:"MATGRAM_COMMAND_PREFIX" envDefault:"!tg"`
	AllowMatrixLogin bool   `env:"MATGRAM_ALLOW_MATRIX_LOGIN" envDefault:"true"`
	PublicLogin      bool   `env:"MATGRAM_PUBLIC_LOGIN" envDefault:"false"`
	PublicLoginPage  string `env:"MATGRAM_PUBLIC_LOGIN_URL"`
}

func NewBridgeConfig(ctx context.Context) *BridgeConfig {
	c := &BridgeConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Bridge config")
	}
	return c
}

func (c BridgeConfig) GetCommandPrefix() string {
	return c.CommandPrefix
}

func (c BridgeConfig) MatrixLoginAllowed() bool {
	return c.AllowMatrixLogin
}

func (c BridgeConfig) PublicLoginEnabled() bool {
	return c.PublicLogin && c.PublicLoginPage != ""
}

func (c BridgeConfig) PublicLoginURL(userID string) string {
	if c.PublicLoginPage == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(c.PublicLoginPage, "?") {
		sep = "&"
	}
	return c.PublicLoginPage + sep + "mxid=" + userID
}
