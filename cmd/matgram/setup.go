package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/matgram/internal/bridge/command"
	"github.com/sandevgo/matgram/internal/bridge/session"
	"github.com/sandevgo/matgram/internal/config"
	"github.com/sandevgo/matgram/internal/storage/sqlite"
	"github.com/sandevgo/matgram/internal/telegram"
	"github.com/sandevgo/matgram/internal/transport/matrix"
	"github.com/sandevgo/matgram/pkg/log"
	"github.com/sandevgo/matgram/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	hsCfg := config.NewHomeserverConfig(ctx)
	bridgeCfg := config.NewBridgeConfig(ctx)
	tgCfg := config.NewTelegramConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	sessionRepo := sqlite.NewSessionRepo(db)
	roomRepo := sqlite.NewRoomRepo(db)

	// 3. Telegram session store
	if err := os.MkdirAll(appCfg.GetSessionDir(), 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create session directory")
	}
	sessions := session.NewStore(sessionRepo, telegram.NewFactory(telegram.Config{
		APIID:      tgCfg.APIID,
		APIHash:    tgCfg.APIHash,
		SessionDir: appCfg.GetSessionDir(),
	}))

	// 4. Relay bot (optional)
	var relayBot command.RelayBot
	if appCfg.EnableRelayBot && tgCfg.BotToken != "" {
		bot, err := telegram.NewRelayBot(tgCfg.BotToken)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize relay bot")
		}
		relayBot = bot
		services = append(services, bot)
	}

	// 5. Command processor
	intent := matrix.NewIntent(hsCfg)
	proc := command.NewProcessor(bridgeCfg, intent, relayBot)

	// 6. Appservice transport
	appservice := matrix.NewAppService(hsCfg.ListenAddr, hsCfg, bridgeCfg,
		proc, sessions, roomRepo, intent)
	services = append(services, appservice)

	return services
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
