package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shazow/wifilist/wifi"
)

var listKeys = []key.Binding{
	key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "scan")),
	key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("c", "connect")),
	key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "password")),
	key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "forget")),
	key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "radio")),
	key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logs")),
}

// ListModel shows the ranked networks of the latest snapshot.
type ListModel struct {
	list          list.Model
	seq           uint64
	width, height int
}

func NewListModel() *ListModel {
	l := list.New([]list.Item{}, newItemDelegate(), 0, 0)
	l.Title = fmt.Sprintf("%-31s %s", "Wi-Fi Network", "Signal")
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.AdditionalShortHelpKeys = func() []key.Binding { return listKeys }
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys
	l.KeyMap.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	// f is forget, so paging stays on the arrows.
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("right", "pgdown"), key.WithHelp("→/pgdn", "next page"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("left", "pgup"), key.WithHelp("←/pgup", "prev page"))
	l.Styles.Title = lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	l.Styles.FilterPrompt = lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
	l.Styles.FilterCursor = lipgloss.NewStyle().Foreground(CurrentTheme.Primary)

	return &ListModel{list: l}
}

func (m *ListModel) Init() tea.Cmd {
	return nil
}

// SetSnapshot replaces the rows. Snapshots older than the one shown are
// ignored.
func (m *ListModel) SetSnapshot(snap wifi.Snapshot) tea.Cmd {
	if snap.Seq < m.seq {
		return nil
	}
	m.seq = snap.Seq
	items := make([]list.Item, len(snap.AccessPoints))
	for i, ap := range snap.AccessPoints {
		items[i] = accessPointItem{AccessPoint: ap, levels: snap.Levels}
	}
	return m.list.SetItems(items)
}

func (m *ListModel) selected() (accessPointItem, bool) {
	if len(m.list.Items()) == 0 {
		return accessPointItem{}, false
	}
	item, ok := m.list.SelectedItem().(accessPointItem)
	return item, ok
}

func (m *ListModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	var cmds []tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && !m.IsConsumingInput() {
		switch msg.String() {
		case "s":
			cmds = append(cmds, func() tea.Msg { return scanMsg{} })
		case "r":
			cmds = append(cmds, func() tea.Msg { return toggleWirelessMsg{} })
		case "L":
			cmds = append(cmds, push(NewLogViewModel()))
		case "f":
			if item, ok := m.selected(); ok && item.Saved() {
				cmds = append(cmds, push(NewForgetModel(item)))
			}
		case "p":
			if item, ok := m.selected(); ok && item.RequiresCredentials && item.Security != wifi.SecurityEAP {
				cmds = append(cmds, push(NewPasswordModel(item)))
			}
		case "c", "enter":
			if item, ok := m.selected(); ok {
				if item.needsPassword() {
					cmds = append(cmds, push(NewPasswordModel(item)))
				} else {
					cmds = append(cmds, func() tea.Msg { return connectMsg{item: item} })
				}
			}
			if msg.String() == "enter" {
				// Keep enter away from the list's own bindings.
				return m, tea.Batch(cmds...)
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *ListModel) View() string {
	var viewBuilder strings.Builder
	listBorderStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(CurrentTheme.Border)
	viewBuilder.WriteString(listBorderStyle.Render(m.list.View()))

	// Custom status bar
	statusText := ""
	if n := len(m.list.Items()); n > 0 {
		statusText = fmt.Sprintf("%d/%d", m.list.Index()+1, n)
	}
	viewBuilder.WriteString("\n")
	viewBuilder.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render(statusText))
	return lipgloss.NewStyle().Margin(1, 2).Render(viewBuilder.String())
}

func (m *ListModel) Resize(width, height int) {
	m.width, m.height = width, height
	h, v := lipgloss.NewStyle().Margin(1, 2).GetFrameSize()
	listBorderStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true)
	bh, bv := listBorderStyle.GetFrameSize()
	extraVerticalSpace := 4
	m.list.SetSize(width-h-bh, height-v-bv-extraVerticalSpace)
}

// IsConsumingInput reports whether the filter prompt is open.
func (m *ListModel) IsConsumingInput() bool {
	return m.list.FilterState() == list.Filtering
}
