package command

import (
	"context"

	"github.com/sandevgo/matgram/internal/telegram"
)

// Handler executes one command invocation. A handler is free to not reply
// (e.g. when it only schedules downstream work); a returned error means the
// invocation failed in an unanticipated way and is reported by the
// dispatcher.
type Handler func(evt *Event) error

// Continuation suspends a user's interaction: the next free-text message
// from the session is fed to Next as if it were a command invocation.
type Continuation struct {
	Next Handler
	// Action names the pending flow, shown on cancellation.
	Action string
	// Data threads auxiliary values between flow steps.
	Data map[string]string
}

type HelpSection int

const (
	SectionGeneric HelpSection = iota
	SectionAuth
	SectionActions
)

// Definition describes a registered command: its handler plus the metadata
// the dispatcher and help generator need.
type Definition struct {
	Name           string
	Handler        Handler
	NeedsAuth      bool
	ManagementOnly bool
	HelpSection    HelpSection
	HelpArgs       string
	HelpText       string
}

// User is the per-session state a command invocation operates on. At most
// one continuation is pending per user; Lock serializes invocations for the
// session.
type User interface {
	MXID() string
	Lock()
	Unlock()

	LoggedIn(ctx context.Context) bool
	Client() telegram.Client
	// EnsureStarted connects the remote client, creating a session when
	// evenIfNoSession is set and none is persisted.
	EnsureStarted(ctx context.Context, evenIfNoSession bool) error

	CommandStatus() *Continuation
	SetCommandStatus(status *Continuation)

	// PostLogin refreshes cached profile data after a successful sign-in.
	PostLogin(ctx context.Context, me *telegram.User) error
	// LogOut tears down the remote session. On failure the session state is
	// left unchanged.
	LogOut(ctx context.Context) error
}

// Replier delivers a rendered reply to a room. The command layer never
// talks to the transport directly.
type Replier interface {
	SendNotice(ctx context.Context, roomID, body, formattedBody string) error
}

// RelayBot is the optional message relay bot the bridge may be configured
// with.
type RelayBot interface {
	ID() int64
	Username() string
	Displayname() string
}
