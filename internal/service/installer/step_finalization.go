package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep computes derived values and final env var formatting
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	// Set derived values
	if state.EnvVars["MATGRAM_RELAY_BOT_TOKEN"] != "" {
		state.EnvVars["MATGRAM_ENABLE_RELAY_BOT"] = "true"
	} else {
		state.EnvVars["MATGRAM_ENABLE_RELAY_BOT"] = "false"
		delete(state.EnvVars, "MATGRAM_RELAY_BOT_TOKEN")
	}

	// Set defaults
	if state.EnvVars["MATGRAM_DEBUG"] == "" {
		state.EnvVars["MATGRAM_DEBUG"] = "0"
	}

	// Signal completion
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}
