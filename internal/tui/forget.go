package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ForgetModel asks to confirm forgetting a saved network.
type ForgetModel struct {
	item          accessPointItem
	width, height int
}

func NewForgetModel(item accessPointItem) *ForgetModel {
	return &ForgetModel{item: item}
}

func (m *ForgetModel) Init() tea.Cmd {
	return nil
}

func (m *ForgetModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y", "enter":
			item := m.item
			return m, tea.Batch(pop, func() tea.Msg { return forgetMsg{item: item} })
		case "n", "N", "q", "esc":
			return m, pop
		}
	}
	return m, nil
}

func (m *ForgetModel) View() string {
	question := lipgloss.NewStyle().Width(50).Align(lipgloss.Center).Render(fmt.Sprintf("Forget network '%s'? (Y/n)", m.item.SSID))
	dialog := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2).BorderForeground(CurrentTheme.Primary).Render(question)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

func (m *ForgetModel) Resize(width, height int) {
	m.width, m.height = width, height
}

func (m *ForgetModel) IsConsumingInput() bool {
	return false
}
