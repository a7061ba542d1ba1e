package installer

import (
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// TelegramAPIIDStep collects the api_id from my.telegram.org
type TelegramAPIIDStep struct {
	input textinput.Model
}

func NewTelegramAPIIDStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 16
	ti.Width = 40
	ti.Placeholder = "123456"

	return &TelegramAPIIDStep{
		input: ti,
	}
}

func (s *TelegramAPIIDStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *TelegramAPIIDStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			if _, err := strconv.Atoi(s.input.Value()); err != nil {
				return s, nil
			}
			state.EnvVars["MATGRAM_TELEGRAM_API_ID"] = s.input.Value()
			return nil, nil
		}
	}
	return s, cmd
}

func (s *TelegramAPIIDStep) View(state *InstallState) string {
	return "Enter your Telegram api_id (from my.telegram.org):\n\n" +
		s.input.View() + "\n\n" +
		"(press enter to confirm)\n"
}

// TelegramAPIHashStep collects the api_hash from my.telegram.org
type TelegramAPIHashStep struct {
	input textinput.Model
}

func NewTelegramAPIHashStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'

	return &TelegramAPIHashStep{
		input: ti,
	}
}

func (s *TelegramAPIHashStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *TelegramAPIHashStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && s.input.Value() != "" {
			state.EnvVars["MATGRAM_TELEGRAM_API_HASH"] = s.input.Value()
			return nil, nil
		}
	}
	return s, cmd
}

func (s *TelegramAPIHashStep) View(state *InstallState) string {
	return "Enter your Telegram api_hash:\n\n" +
		s.input.View() + "\n\n" +
		"(press enter to confirm)\n"
}

// RelayBotTokenStep collects an optional relay bot token
type RelayBotTokenStep struct {
	input textinput.Model
}

func NewRelayBotTokenStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = "123456789:ABCDEF... (optional, leave empty to skip)"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'

	return &RelayBotTokenStep{
		input: ti,
	}
}

func (s *RelayBotTokenStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *RelayBotTokenStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			state.EnvVars["MATGRAM_RELAY_BOT_TOKEN"] = s.input.Value()
			return nil, nil
		}
	}
	return s, cmd
}

func (s *RelayBotTokenStep) View(state *InstallState) string {
	return "Enter a relay bot token (optional, press enter to skip):\n\n" +
		s.input.View() + "\n\n" +
		"(press enter to confirm)\n"
}
