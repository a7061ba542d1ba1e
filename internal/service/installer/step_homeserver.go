package installer

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// HomeserverAddressStep collects the homeserver client-server API URL
type HomeserverAddressStep struct {
	input textinput.Model
}

func NewHomeserverAddressStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = "https://matrix.example.com"

	return &HomeserverAddressStep{
		input: ti,
	}
}

func (s *HomeserverAddressStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *HomeserverAddressStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && s.input.Value() != "" {
			state.EnvVars["MATGRAM_HOMESERVER_ADDRESS"] = s.input.Value()
			return nil, nil
		}
	}
	return s, cmd
}

func (s *HomeserverAddressStep) View(state *InstallState) string {
	return "Enter your homeserver address:\n\n" +
		s.input.View() + "\n\n" +
		"(press enter to confirm)\n"
}

// HomeserverDomainStep collects the server_name part of user IDs
type HomeserverDomainStep struct {
	input textinput.Model
}

func NewHomeserverDomainStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = "example.com"

	return &HomeserverDomainStep{
		input: ti,
	}
}

func (s *HomeserverDomainStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *HomeserverDomainStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && s.input.Value() != "" {
			state.EnvVars["MATGRAM_HOMESERVER_DOMAIN"] = s.input.Value()
			return nil, nil
		}
	}
	return s, cmd
}

func (s *HomeserverDomainStep) View(state *InstallState) string {
	return "Enter your homeserver domain (the part after ':' in user IDs):\n\n" +
		s.input.View() + "\n\n" +
		"(press enter to confirm)\n"
}
