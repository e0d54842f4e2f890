package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shazow/wifilist/wifi"
)

// Component is the interface for a TUI component.
type Component interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Component, tea.Cmd)
	View() string
	Resize(width, height int)
	// IsConsumingInput reports whether keys should go to a text input
	// rather than global bindings.
	IsConsumingInput() bool
}

// accessPointItem is a single row of the network list.
type accessPointItem struct {
	wifi.AccessPoint
	levels int
}

func (i accessPointItem) Title() string { return i.SSID }

func (i accessPointItem) Description() string {
	if i.CredentialRejected() {
		return "Password rejected"
	}
	if s := i.Status(); s != wifi.StatusIdle {
		return s.Summary()
	}
	return ""
}

func (i accessPointItem) FilterValue() string { return i.SSID }

// needsPassword reports whether connecting should prompt first. Enterprise
// networks are configured without a password.
func (i accessPointItem) needsPassword() bool {
	return i.NeedsPassword() && i.Security != wifi.SecurityEAP
}

// Bubbletea messages are used to communicate between the main loop and commands
type (
	// From the tracker
	snapshotMsg wifi.Snapshot
	doneMsg             string
	errorMsg            struct{ err error }
	wirelessDisabledMsg struct{}

	// To the main model
	pushViewMsg struct{ c Component }
	popViewMsg  struct{}
	scanMsg     struct{}
	connectMsg  struct {
		item     accessPointItem
		password string
	}
	forgetMsg         struct{ item accessPointItem }
	toggleWirelessMsg struct{}
)

func push(c Component) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{c: c} }
}

func pop() tea.Msg { return popViewMsg{} }
