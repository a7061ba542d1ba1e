package command

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sandevgo/matgram/internal/core"
	"github.com/sandevgo/matgram/pkg/conv"
)

// Event is the per-invocation bundle handed to a handler: the sender's
// session, the room, the parsed arguments and the capabilities the handler
// may use. It is constructed by the dispatcher and discarded after the
// handler returns.
type Event struct {
	Ctx          context.Context
	Log          *zerolog.Logger
	Sender       User
	RoomID       string
	Command      string
	Args         []string
	IsManagement bool
	IsPortal     bool

	config  core.BridgeConfig
	replier Replier
	proc    *Processor
}

func (evt *Event) Config() core.BridgeConfig {
	return evt.config
}

// Bot returns the relay bot, or nil when none is configured.
func (evt *Event) Bot() RelayBot {
	return evt.proc.bot
}

// Reply renders text as markdown and delivers it to the invocation's room.
func (evt *Event) Reply(text string) error {
	return evt.ReplyOpts(text, false, true)
}

func (evt *Event) ReplyOpts(text string, allowHTML, renderMarkdown bool) error {
	text = evt.expandPrefix(text)
	var formatted string
	if renderMarkdown {
		formatted = strings.TrimSpace(conv.MarkdownToMatrixHTML([]byte(text)))
	} else if allowHTML {
		formatted = text
	}
	return evt.replier.SendNotice(evt.Ctx, evt.RoomID, text, formatted)
}

// expandPrefix substitutes the command prefix placeholders. In management
// rooms commands are prefix-free, so the prefix-plus-space form collapses to
// nothing there.
func (evt *Event) expandPrefix(text string) string {
	prefix := evt.config.GetCommandPrefix()
	if evt.IsManagement {
		text = strings.ReplaceAll(text, "$cmdprefix+sp ", "")
	} else {
		text = strings.ReplaceAll(text, "$cmdprefix+sp ", prefix+" ")
	}
	return strings.ReplaceAll(text, "$cmdprefix", prefix)
}
