package tui

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	wifilog "github.com/shazow/wifilist/internal/log"
)

// LogViewModel shows the latest log records.
type LogViewModel struct {
	logs  func() []slog.Record
	width int
}

// NewLogViewModel creates a new LogViewModel.
func NewLogViewModel() *LogViewModel {
	return &LogViewModel{logs: wifilog.Logs}
}

func (m *LogViewModel) Init() tea.Cmd {
	return nil
}

func (m *LogViewModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "l":
			return m, pop
		}
	}
	return m, nil
}

func (m *LogViewModel) View() string {
	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).Render("Latest logs (press 'q' to return):"))
	s.WriteString("\n\n")

	logs := m.logs()
	if len(logs) == 0 {
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render("Nothing logged yet."))
	}
	for _, r := range logs {
		style := lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
		switch {
		case r.Level >= slog.LevelError:
			style = style.Foreground(CurrentTheme.Error)
		case r.Level < slog.LevelInfo:
			style = style.Foreground(CurrentTheme.Subtle)
		}
		var line strings.Builder
		fmt.Fprintf(&line, "%s [%s] %s", r.Time.Format("15:04:05"), r.Level, r.Message)
		r.Attrs(func(a slog.Attr) bool {
			fmt.Fprintf(&line, " %s=%v", a.Key, a.Value.Any())
			return true
		})
		s.WriteString(style.Render(line.String()))
		s.WriteString("\n")
	}
	return lipgloss.NewStyle().Margin(1, 2).Render(s.String())
}

func (m *LogViewModel) Resize(width, height int) {
	m.width = width
}

func (m *LogViewModel) IsConsumingInput() bool {
	return false
}
