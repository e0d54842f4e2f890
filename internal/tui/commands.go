package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shazow/wifilist/wifi"
)

// Tracker is what the TUI needs from wifi/tracker.Tracker.
type Tracker interface {
	Subscribe() (<-chan wifi.Snapshot, func())
	Refresh(shouldScan bool) (wifi.Snapshot, error)
	Connect(key wifi.Key, password string) (wifi.Snapshot, error)
	Forget(key wifi.Key) (wifi.Snapshot, error)
	SetWireless(enabled bool) (wifi.Snapshot, error)
	WirelessEnabled() (bool, error)
}

// waitForSnapshot blocks until the tracker publishes a snapshot.
func waitForSnapshot(ch <-chan wifi.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

// Results reach the list through the subscription, commands only report
// completion.

func refreshNetworks(t Tracker, shouldScan bool) tea.Cmd {
	return func() tea.Msg {
		if _, err := t.Refresh(shouldScan); errors.Is(err, wifi.ErrWirelessDisabled) {
			return wirelessDisabledMsg{}
		} else if err != nil {
			return errorMsg{err}
		}
		if shouldScan {
			return doneMsg("Scan finished.")
		}
		return doneMsg("")
	}
}

func connectNetwork(t Tracker, item accessPointItem, password string) tea.Cmd {
	return func() tea.Msg {
		if _, err := t.Connect(item.Key(), password); err != nil {
			return errorMsg{err}
		}
		return doneMsg(fmt.Sprintf("Connecting to '%s'.", item.SSID))
	}
}

func forgetNetwork(t Tracker, item accessPointItem) tea.Cmd {
	return func() tea.Msg {
		if _, err := t.Forget(item.Key()); err != nil {
			return errorMsg{err}
		}
		return doneMsg(fmt.Sprintf("Forgot '%s'.", item.SSID))
	}
}

func toggleWireless(t Tracker) tea.Cmd {
	return func() tea.Msg {
		enabled, err := t.WirelessEnabled()
		if err != nil {
			return errorMsg{err}
		}
		if _, err := t.SetWireless(!enabled); err != nil {
			return errorMsg{err}
		}
		if enabled {
			return wirelessDisabledMsg{}
		}
		return doneMsg("Wi-Fi turned on.")
	}
}
