package installer

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func newTokenInput() textinput.Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return ti
}

// ASTokenStep collects the appservice token the bridge authenticates with
type ASTokenStep struct {
	input textinput.Model
}

func NewASTokenStep() Step {
	return &ASTokenStep{
		input: newTokenInput(),
	}
}

func (s *ASTokenStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *ASTokenStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && s.input.Value() != "" {
			state.EnvVars["MATGRAM_AS_TOKEN"] = s.input.Value()
			return nil, nil
		}
	}
	return s, cmd
}

func (s *ASTokenStep) View(state *InstallState) string {
	return "Enter the as_token from your appservice registration:\n\n" +
		s.input.View() + "\n\n" +
		"(press enter to confirm)\n"
}

// HSTokenStep collects the token the homeserver authenticates with
type HSTokenStep struct {
	input textinput.Model
}

func NewHSTokenStep() Step {
	return &HSTokenStep{
		input: newTokenInput(),
	}
}

func (s *HSTokenStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *HSTokenStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && s.input.Value() != "" {
			state.EnvVars["MATGRAM_HS_TOKEN"] = s.input.Value()
			return nil, nil
		}
	}
	return s, cmd
}

func (s *HSTokenStep) View(state *InstallState) string {
	return "Enter the hs_token from your appservice registration:\n\n" +
		s.input.View() + "\n\n" +
		"(press enter to confirm)\n"
}
