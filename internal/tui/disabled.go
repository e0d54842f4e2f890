package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WirelessDisabledModel is shown while the radio is off.
type WirelessDisabledModel struct {
	width, height int
}

func NewWirelessDisabledModel() *WirelessDisabledModel {
	return &WirelessDisabledModel{}
}

func (m *WirelessDisabledModel) Init() tea.Cmd {
	return nil
}

func (m *WirelessDisabledModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, tea.Batch(pop, func() tea.Msg { return toggleWirelessMsg{} })
		case "q", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *WirelessDisabledModel) View() string {
	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render("Wi-Fi is disabled."))
	s.WriteString("\n\n")
	button := lipgloss.NewStyle().
		Foreground(CurrentTheme.Primary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Border).
		Padding(0, 1).
		Render("Enable Wi-Fi (r)")
	s.WriteString(button)
	s.WriteString("\n\n")
	s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render("Press 'q' to quit."))
	return lipgloss.NewStyle().Margin(1, 2).Render(s.String())
}

func (m *WirelessDisabledModel) Resize(width, height int) {
	m.width, m.height = width, height
}

func (m *WirelessDisabledModel) IsConsumingInput() bool {
	return false
}
