package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/matgram/internal/core"
	"github.com/sandevgo/matgram/pkg/log"
)

// Processor resolves incoming command tokens to handlers and runs them. It
// owns the registry and guarantees that a failing handler never reaches the
// transport layer.
type Processor struct {
	registry *Registry
	cfg      core.BridgeConfig
	replier  Replier
	bot      RelayBot
}

// NewProcessor builds a Processor with the full command set registered. bot
// may be nil when no relay bot is configured.
func NewProcessor(cfg core.BridgeConfig, replier Replier, bot RelayBot) *Processor {
	proc := &Processor{
		registry: NewRegistry(),
		cfg:      cfg,
		replier:  replier,
		bot:      bot,
	}
	registerAll(proc.registry)
	return proc
}

func (proc *Processor) Registry() *Registry {
	return proc.registry
}

// Handle is the sole entry point for the transport layer. Invocations for
// the same sender are serialized on the session lock; different senders
// proceed concurrently.
func (proc *Processor) Handle(ctx context.Context, roomID string, sender User,
	command string, args []string, isManagement, isPortal bool) {
	sender.Lock()
	defer sender.Unlock()

	logger := log.FromCtx(ctx).With().
		Str("mxid", sender.MXID()).
		Str("command", command).
		Logger()

	evt := &Event{
		Ctx:          ctx,
		Log:          &logger,
		Sender:       sender,
		RoomID:       roomID,
		Command:      command,
		Args:         args,
		IsManagement: isManagement,
		IsPortal:     isPortal,
		config:       proc.cfg,
		replier:      proc.replier,
		proc:         proc,
	}

	def, direct := proc.registry.Get(strings.ToLower(command))
	var handler Handler
	if direct {
		// precondition gates apply to direct name matches only
		if def.NeedsAuth && !sender.LoggedIn(ctx) {
			_ = evt.Reply("This command requires you to be logged in.")
			return
		}
		if def.ManagementOnly && !isManagement {
			_ = evt.Reply(fmt.Sprintf(
				"`%s` is a restricted command: you may only run it in management rooms.",
				def.Name))
			return
		}
		handler = def.Handler
	} else if status := sender.CommandStatus(); status != nil && status.Next != nil {
		// a free-text reply mid-flow continues the pending handler with the
		// full token sequence, unresolved first token included
		evt.Args = append([]string{command}, args...)
		handler = status.Next
	} else {
		handler = cmdUnknown
	}

	proc.run(evt, handler)
}

func (proc *Processor) run(evt *Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			proc.fatal(evt, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := handler(evt); err != nil {
		proc.fatal(evt, err)
	}
}

func (proc *Processor) fatal(evt *Event, err error) {
	evt.Log.Error().Err(err).
		Strs("args", evt.Args).
		Msg("fatal error handling command")
	_ = evt.Reply("Fatal error while handling command. Check logs for more details.")
}

func registerAll(r *Registry) {
	for _, def := range []Definition{
		{
			Name:        "help",
			Handler:     cmdHelp,
			HelpSection: SectionGeneric,
			HelpText:    "Show this help message.",
		},
		{
			Name:        "cancel",
			Handler:     cmdCancel,
			HelpSection: SectionGeneric,
			HelpText:    "Cancel an ongoing action (such as login).",
		},
		{
			Name:        "ping",
			Handler:     cmdPing,
			HelpSection: SectionAuth,
			HelpText:    "Check if you're logged into Telegram.",
		},
		{
			Name:        "ping-bot",
			Handler:     cmdPingBot,
			HelpSection: SectionAuth,
			HelpText:    "Get the info of the message relay Telegram bot.",
		},
		{
			Name:           "login",
			Handler:        cmdLogin,
			ManagementOnly: true,
			HelpSection:    SectionAuth,
			HelpText:       "Get instructions on how to log in.",
		},
		{
			Name:           "register",
			Handler:        cmdRegister,
			ManagementOnly: true,
			HelpSection:    SectionAuth,
			HelpArgs:       "<_phone_> <_full name_>",
			HelpText:       "Register to Telegram.",
		},
		{
			Name:    "enter-phone-or-token",
			Handler: cmdEnterPhoneOrToken,
		},
		{
			Name:    "enter-code",
			Handler: cmdEnterCode,
		},
		{
			Name:    "enter-password",
			Handler: cmdEnterPassword,
		},
		{
			Name:        "logout",
			Handler:     cmdLogout,
			NeedsAuth:   true,
			HelpSection: SectionAuth,
			HelpText:    "Log out from Telegram.",
		},
		{
			Name:        "search",
			Handler:     cmdSearch,
			NeedsAuth:   true,
			HelpSection: SectionActions,
			HelpArgs:    "[_-r|--remote_] <_query_>",
			HelpText:    "Search your contacts or the Telegram servers for users.",
		},
		{
			Name:        "pm",
			Handler:     cmdPM,
			NeedsAuth:   true,
			HelpSection: SectionActions,
			HelpArgs:    "<_identifier_>",
			HelpText:    "Open a private chat with the given Telegram user. The identifier is either the internal user ID, the username or the phone number.",
		},
		{
			Name:        "join",
			Handler:     cmdJoin,
			NeedsAuth:   true,
			HelpSection: SectionActions,
			HelpArgs:    "<_link_>",
			HelpText:    "Join a chat with an invite link.",
		},
	} {
		r.Register(def)
	}
}
