package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shazow/wifilist/wifi"
)

// ErrorModel shows a failed operation until any key is pressed.
type ErrorModel struct {
	err   error
	width int
}

func NewErrorModel(err error) *ErrorModel {
	return &ErrorModel{err: err}
}

func (m *ErrorModel) Init() tea.Cmd {
	return nil
}

func (m *ErrorModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		return m, pop
	}
	return m, nil
}

// hint suggests what to do next for errors the user can act on.
func hint(err error) string {
	switch {
	case errors.Is(err, wifi.ErrInvalidCredentialFormat):
		return "Press 'p' on the network to enter a different password."
	case errors.Is(err, wifi.ErrWirelessDisabled):
		return "Press 'r' to turn Wi-Fi on."
	case errors.Is(err, wifi.ErrNotSupported):
		return "This backend cannot do that."
	}
	return ""
}

func (m *ErrorModel) View() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder(), true).
		BorderForeground(CurrentTheme.Error).
		Padding(1, 2)
	if m.width > 10 {
		style = style.MaxWidth(m.width - 4)
	}
	text := fmt.Sprintf("Error: %s", m.err)
	if h := hint(m.err); h != "" {
		text += "\n\n" + lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render(h)
	}
	return lipgloss.NewStyle().Margin(1, 2).Render(style.Render(text))
}

func (m *ErrorModel) Resize(width, height int) {
	m.width = width
}

func (m *ErrorModel) IsConsumingInput() bool {
	return false
}
