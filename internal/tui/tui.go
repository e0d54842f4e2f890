package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	wifilog "github.com/shazow/wifilist/internal/log"
	"github.com/shazow/wifilist/wifi"
)

// The main model for our TUI application
type model struct {
	stack   *ComponentStack
	list    *ListModel
	spinner spinner.Model

	tracker   Tracker
	snapshots <-chan wifi.Snapshot
	cancel    func()

	loading       bool
	statusMessage string
}

// NewModel creates the starting state of our application. Call Close once
// the program has exited.
func NewModel(t Tracker) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(CurrentTheme.Primary)

	listModel := NewListModel()
	snapshots, cancel := t.Subscribe()
	return &model{
		stack:         NewComponentStack(listModel),
		list:          listModel,
		spinner:       s,
		tracker:       t,
		snapshots:     snapshots,
		cancel:        cancel,
		loading:       true,
		statusMessage: "Scanning for networks...",
	}
}

// Close stops the snapshot subscription.
func (m *model) Close() {
	m.cancel()
}

// Init is the first command that is run when the program starts
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForSnapshot(m.snapshots), refreshNetworks(m.tracker, true))
}

func (m *model) setLoading(format string, a ...any) {
	m.loading = true
	m.statusMessage = fmt.Sprintf(format, a...)
}

// Update handles all incoming messages and updates the model accordingly
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.stack.Resize(msg.Width, msg.Height)
		return m, nil
	case snapshotMsg:
		// The list follows snapshots even while another view is on top.
		return m, tea.Batch(m.list.SetSnapshot(wifi.Snapshot(msg)), waitForSnapshot(m.snapshots))
	case pushViewMsg:
		return m, m.stack.Push(msg.c)
	case popViewMsg:
		m.stack.Pop()
		return m, nil
	case errorMsg:
		m.loading = false
		m.statusMessage = ""
		return m, m.stack.Push(NewErrorModel(msg.err))
	case wirelessDisabledMsg:
		m.loading = false
		m.statusMessage = ""
		if m.stack.Len() == 1 {
			return m, m.stack.Push(NewWirelessDisabledModel())
		}
		return m, nil
	case doneMsg:
		m.loading = false
		m.statusMessage = string(msg)
		return m, nil
	case scanMsg:
		m.setLoading("Scanning for networks...")
		return m, refreshNetworks(m.tracker, true)
	case connectMsg:
		m.setLoading("Connecting to '%s'...", msg.item.SSID)
		return m, connectNetwork(m.tracker, msg.item, msg.password)
	case forgetMsg:
		m.setLoading("Forgetting '%s'...", msg.item.SSID)
		return m, forgetNetwork(m.tracker, msg.item)
	case toggleWirelessMsg:
		m.setLoading("Toggling Wi-Fi...")
		return m, toggleWireless(m.tracker)
	case wifilog.LogMsg:
		if msg.Level >= slog.LevelWarn && !m.loading {
			m.statusMessage = msg.Message
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m, m.stack.Update(msg)
}

// View renders the UI based on the current model state
func (m *model) View() string {
	var s strings.Builder
	s.WriteString(m.stack.View())

	status := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(m.statusMessage)
	if m.loading {
		s.WriteString(fmt.Sprintf("\n%s %s", m.spinner.View(), status))
	} else if m.statusMessage != "" {
		s.WriteString("\n" + status)
	}
	return s.String()
}
