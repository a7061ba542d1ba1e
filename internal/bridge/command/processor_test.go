package command

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_UnknownCommand(t *testing.T) {
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	user := newFakeUser(&fakeClient{})

	proc.Handle(context.Background(), "!room", user, "frobnicate", nil, true, false)

	assert.Equal(t, "Unknown command. Try `help` for help.", replier.last())
}

func TestProcessor_UnknownCommandOutsideManagement(t *testing.T) {
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	user := newFakeUser(&fakeClient{})

	proc.Handle(context.Background(), "!room", user, "frobnicate", nil, false, false)

	assert.Equal(t, "Unknown command. Try `!tg help` for help.", replier.last())
}

func TestProcessor_CommandNameIsCaseInsensitive(t *testing.T) {
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	user := newFakeUser(&fakeClient{})

	proc.Handle(context.Background(), "!room", user, "CANCEL", nil, true, false)

	assert.Equal(t, "No ongoing command.", replier.last())
}

func TestProcessor_AuthGate(t *testing.T) {
	calls := 0
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	proc.Registry().Register(Definition{
		Name:      "guarded",
		NeedsAuth: true,
		Handler: func(evt *Event) error {
			calls++
			return nil
		},
	})
	user := newFakeUser(&fakeClient{})

	proc.Handle(context.Background(), "!room", user, "guarded", nil, true, false)

	assert.Equal(t, 0, calls)
	assert.Equal(t, "This command requires you to be logged in.", replier.last())

	user.loggedIn = true
	proc.Handle(context.Background(), "!room", user, "guarded", nil, true, false)
	assert.Equal(t, 1, calls)
}

func TestProcessor_ManagementGate(t *testing.T) {
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	user := newFakeUser(&fakeClient{})

	proc.Handle(context.Background(), "!room", user, "login", nil, false, false)

	assert.Equal(t,
		"`login` is a restricted command: you may only run it in management rooms.",
		replier.last())
	assert.Nil(t, user.status)
}

func TestProcessor_ContinuationGetsFullTokenList(t *testing.T) {
	var got []string
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	user := newFakeUser(&fakeClient{})
	user.status = &Continuation{
		Action: "Login",
		Next: func(evt *Event) error {
			got = evt.Args
			return nil
		},
	}

	// the unresolved first token is part of the payload
	proc.Handle(context.Background(), "!room", user, "hunter2", []string{"extra"}, true, false)

	assert.Equal(t, []string{"hunter2", "extra"}, got)
}

func TestProcessor_DirectMatchBeatsContinuation(t *testing.T) {
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	user := newFakeUser(&fakeClient{})
	user.status = &Continuation{
		Action: "Login",
		Next: func(evt *Event) error {
			t.Fatal("continuation must not run for a registered command name")
			return nil
		},
	}

	proc.Handle(context.Background(), "!room", user, "cancel", nil, true, false)

	assert.Equal(t, "Login cancelled.", replier.last())
	assert.Nil(t, user.status)
}

func TestProcessor_HandlerPanicIsContained(t *testing.T) {
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	proc.Registry().Register(Definition{
		Name: "boom",
		Handler: func(evt *Event) error {
			panic("kaboom")
		},
	})
	user := newFakeUser(&fakeClient{})

	require.NotPanics(t, func() {
		proc.Handle(context.Background(), "!room", user, "boom", nil, true, false)
	})
	assert.Equal(t, "Fatal error while handling command. Check logs for more details.", replier.last())
}

func TestProcessor_HandlerErrorGetsGenericReply(t *testing.T) {
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	proc.Registry().Register(Definition{
		Name: "broken",
		Handler: func(evt *Event) error {
			return assert.AnError
		},
	})
	user := newFakeUser(&fakeClient{})

	proc.Handle(context.Background(), "!room", user, "broken", nil, true, false)

	assert.Equal(t, "Fatal error while handling command. Check logs for more details.", replier.last())
}

func TestProcessor_HelpListsSections(t *testing.T) {
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	user := newFakeUser(&fakeClient{})

	proc.Handle(context.Background(), "!room", user, "help", nil, true, false)

	help := replier.last()
	assert.Contains(t, help, "This is a management room")
	assert.Contains(t, help, "**Generic bridge commands**")
	assert.Contains(t, help, "**Authentication commands**")
	assert.Contains(t, help, "**Telegram actions**")
	assert.Contains(t, help, "**login**")
	// flow-internal handlers carry no help text
	assert.NotContains(t, help, "enter-code")
	// prefix-free in management rooms
	assert.NotContains(t, help, "$cmdprefix")
}

func TestProcessor_HelpPreambleOutsideManagement(t *testing.T) {
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	user := newFakeUser(&fakeClient{})

	proc.Handle(context.Background(), "!room", user, "help", nil, false, true)
	assert.True(t, strings.HasPrefix(replier.last(), "**This is a portal room**"))

	proc.Handle(context.Background(), "!room", user, "help", nil, false, false)
	assert.True(t, strings.HasPrefix(replier.last(), "**This is not a management room**"))
}

func TestProcessor_ConcurrentSameSessionLogins(t *testing.T) {
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	user := newFakeUser(&fakeClient{})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			proc.Handle(context.Background(), "!room", user, "login", nil, true, false)
		}()
	}
	wg.Wait()

	// per-session serialization: both invocations ran, but the session is
	// left with a single coherent continuation
	assert.Equal(t, 2, replier.count())
	require.NotNil(t, user.status)
	assert.Equal(t, "Login", user.status.Action)
}

func TestProcessor_CancelTwiceIsIdempotent(t *testing.T) {
	replier := &fakeReplier{}
	proc := NewProcessor(defaultConfig(), replier, nil)
	user := newFakeUser(&fakeClient{})
	user.status = &Continuation{Action: "Login", Next: func(evt *Event) error { return nil }}

	proc.Handle(context.Background(), "!room", user, "cancel", nil, true, false)
	assert.Equal(t, "Login cancelled.", replier.last())
	assert.Nil(t, user.status)

	proc.Handle(context.Background(), "!room", user, "cancel", nil, true, false)
	assert.Equal(t, "No ongoing command.", replier.last())
}
