package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Name: "one"})
	r.Register(Definition{Name: "two"})

	def, ok := r.Get("one")
	require.True(t, ok)
	assert.Equal(t, "one", def.Name)

	_, ok = r.Get("three")
	assert.False(t, ok)
}

func TestRegistry_ReplaceKeepsOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Name: "one", HelpText: "first"})
	r.Register(Definition{Name: "two"})
	r.Register(Definition{Name: "one", HelpText: "replaced"})

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "one", all[0].Name)
	assert.Equal(t, "replaced", all[0].HelpText)
	assert.Equal(t, "two", all[1].Name)
}

func TestRegistry_DefaultSetResolvesLowercaseOnly(t *testing.T) {
	r := NewRegistry()
	registerAll(r)

	for _, name := range []string{"help", "cancel", "ping", "ping-bot", "login",
		"register", "enter-phone-or-token", "enter-code", "enter-password",
		"logout", "search", "pm", "join"} {
		_, ok := r.Get(name)
		assert.True(t, ok, "missing command %q", name)
	}

	// the dispatcher lowercases before lookup
	_, ok := r.Get("LOGIN")
	assert.False(t, ok)
}
