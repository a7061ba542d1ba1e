package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalEnv(t *testing.T) {
	type cfg struct {
		Address string `env:"APP_ADDRESS"`
		Port    int    `env:"APP_PORT"`
		Debug   bool   `env:"APP_DEBUG"`
		Skipped string
		Tagged  string `env:"APP_TAGGED,required,notEmpty"`
		Empty   string `env:"APP_EMPTY"`
	}

	out, err := MarshalEnv(&cfg{
		Address: "https://example.com",
		Port:    8080,
		Debug:   true,
		Skipped: "never written",
		Tagged:  "value",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"APP_ADDRESS=https://example.com\nAPP_PORT=8080\nAPP_DEBUG=true\nAPP_TAGGED=value\n",
		out)
}

func TestMarshalEnv_ZeroValuesOmitted(t *testing.T) {
	type cfg struct {
		A string `env:"A"`
		B int    `env:"B"`
		C bool   `env:"C"`
	}

	out, err := MarshalEnv(&cfg{})
	require.NoError(t, err)
	assert.Empty(t, out)
}
