package installer

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// CommandPrefixStep collects the command prefix used outside management rooms
type CommandPrefixStep struct {
	input textinput.Model
}

func NewCommandPrefixStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 16
	ti.Width = 20
	ti.Placeholder = "!tg"

	return &CommandPrefixStep{
		input: ti,
	}
}

func (s *CommandPrefixStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *CommandPrefixStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			prefix := s.input.Value()
			if prefix == "" {
				prefix = "!tg"
			}
			state.EnvVars["MATGRAM_COMMAND_PREFIX"] = prefix
			return nil, nil
		}
	}
	return s, cmd
}

func (s *CommandPrefixStep) View(state *InstallState) string {
	return "Enter the command prefix (default !tg):\n\n" +
		s.input.View() + "\n\n" +
		"(press enter to confirm)\n"
}
