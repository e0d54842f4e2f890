package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PasswordModel prompts for the password of a network before connecting.
type PasswordModel struct {
	item          accessPointItem
	input         textinput.Model
	width, height int
}

func NewPasswordModel(item accessPointItem) *PasswordModel {
	ti := textinput.New()
	ti.Placeholder = "Password"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	// 64 hex digits is the longest key either security kind accepts.
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()
	return &PasswordModel{item: item, input: ti}
}

func (m *PasswordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *PasswordModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return m, pop
		case "enter":
			password := m.input.Value()
			if password == "" {
				return m, nil
			}
			item := m.item
			return m, tea.Batch(pop, func() tea.Msg { return connectMsg{item: item, password: password} })
		case "ctrl+r":
			if m.input.EchoMode == textinput.EchoPassword {
				m.input.EchoMode = textinput.EchoNormal
			} else {
				m.input.EchoMode = textinput.EchoPassword
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *PasswordModel) View() string {
	var s strings.Builder
	title := fmt.Sprintf("Connect to '%s' (%s)", m.item.SSID, m.item.SecurityString())
	s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).Render(title))
	s.WriteString("\n\n")
	if m.item.CredentialRejected() {
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render("The saved password was rejected."))
		s.WriteString("\n\n")
	}
	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render("enter: connect • ctrl+r: show password • esc: cancel"))

	dialog := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2).BorderForeground(CurrentTheme.Border).Render(s.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

func (m *PasswordModel) Resize(width, height int) {
	m.width, m.height = width, height
}

func (m *PasswordModel) IsConsumingInput() bool {
	return true
}
