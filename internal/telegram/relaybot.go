package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/matgram/pkg/log"
	tele "gopkg.in/telebot.v3"
)

// RelayBot wraps the optional Telegram bot account used to relay messages
// for bridge users who are not logged in themselves.
type RelayBot struct {
	bot *tele.Bot
}

func NewRelayBot(token string) (*RelayBot, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create relay bot: %w", err)
	}

	bot := &RelayBot{bot: b}

	b.Handle("/start", func(c tele.Context) error {
		return c.Send("This is a Matrix bridge relay bot. Invite it to a portal room to use it.")
	})

	return bot, nil
}

func (b *RelayBot) ID() int64 {
	return b.bot.Me.ID
}

func (b *RelayBot) Username() string {
	return b.bot.Me.Username
}

func (b *RelayBot) Displayname() string {
	return b.bot.Me.FirstName
}

func (b *RelayBot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("username", b.bot.Me.Username).Msg("starting telegram relay bot")
	b.bot.Start()
	return nil
}

func (b *RelayBot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}
