package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/matgram/internal/config"
	"github.com/sandevgo/matgram/pkg/env"
)

// envFile mirrors the collected configuration for .env serialization
type envFile struct {
	HomeserverAddress string `env:"MATGRAM_HOMESERVER_ADDRESS"`
	HomeserverDomain  string `env:"MATGRAM_HOMESERVER_DOMAIN"`
	ASToken           string `env:"MATGRAM_AS_TOKEN"`
	HSToken           string `env:"MATGRAM_HS_TOKEN"`
	APIID             int    `env:"MATGRAM_TELEGRAM_API_ID"`
	APIHash           string `env:"MATGRAM_TELEGRAM_API_HASH"`
	RelayBotToken     string `env:"MATGRAM_RELAY_BOT_TOKEN"`
	EnableRelayBot    bool   `env:"MATGRAM_ENABLE_RELAY_BOT"`
	CommandPrefix     string `env:"MATGRAM_COMMAND_PREFIX"`
	Debug             string `env:"MATGRAM_DEBUG"`
}

func (state *InstallState) envFile() *envFile {
	apiID, _ := strconv.Atoi(state.EnvVars["MATGRAM_TELEGRAM_API_ID"])
	return &envFile{
		HomeserverAddress: state.EnvVars["MATGRAM_HOMESERVER_ADDRESS"],
		HomeserverDomain:  state.EnvVars["MATGRAM_HOMESERVER_DOMAIN"],
		ASToken:           state.EnvVars["MATGRAM_AS_TOKEN"],
		HSToken:           state.EnvVars["MATGRAM_HS_TOKEN"],
		APIID:             apiID,
		APIHash:           state.EnvVars["MATGRAM_TELEGRAM_API_HASH"],
		RelayBotToken:     state.EnvVars["MATGRAM_RELAY_BOT_TOKEN"],
		EnableRelayBot:    state.EnvVars["MATGRAM_ENABLE_RELAY_BOT"] == "true",
		CommandPrefix:     state.EnvVars["MATGRAM_COMMAND_PREFIX"],
		Debug:             state.EnvVars["MATGRAM_DEBUG"],
	}
}

// SaveEnvStep writes the collected configuration to .env file
type SaveEnvStep struct {
	err   error
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}

	path := config.GetRuntimePath()

	if err := os.MkdirAll(path, 0755); err != nil {
		s.err = fmt.Errorf("failed to create runtime directory: %w", err)
		return s, nil
	}

	envPath := filepath.Join(path, ".env")

	// Check if .env already exists
	if _, err := os.Stat(envPath); err == nil {
		s.err = fmt.Errorf(".env file already exists at %s", envPath)
		return s, nil
	}

	content, err := env.MarshalEnv(state.envFile())
	if err != nil {
		s.err = err
		return s, nil
	}

	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// InitializeDirsStep creates the runtime layout the bridge expects
type InitializeDirsStep struct {
	err  error
	done bool
}

func NewInitializeDirsStep() Step {
	return &InitializeDirsStep{}
}

func (s *InitializeDirsStep) Init() tea.Cmd {
	return nil
}

func (s *InitializeDirsStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.done {
		return nil, nil
	}

	path := config.GetRuntimePath()

	for _, dir := range []string{path, filepath.Join(path, "sessions")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			s.err = fmt.Errorf("failed to create %s: %w", dir, err)
			return s, nil
		}
	}

	s.done = true
	return nil, nil
}

func (s *InitializeDirsStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.done {
		return "Runtime directories initialized successfully!\n"
	}
	return "Initializing runtime directories...\n"
}
