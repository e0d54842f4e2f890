package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/shazow/wifilist/wifi"
)

func TestSignalBars(t *testing.T) {
	tests := []struct {
		level, levels int
		inRange       bool
		want          string
	}{
		{0, 4, true, "▮▯▯▯"},
		{2, 4, true, "▮▮▮▯"},
		{3, 4, true, "▮▮▮▮"},
		{0, 4, false, "▯▯▯▯"},
		{0, 0, true, ""},
	}
	for _, tt := range tests {
		if got := signalBars(tt.level, tt.levels, tt.inRange); got != tt.want {
			t.Errorf("signalBars(%d, %d, %v) = %q, want %q", tt.level, tt.levels, tt.inRange, got, tt.want)
		}
	}
}

func TestSignalColor(t *testing.T) {
	prev := CurrentTheme
	t.Cleanup(func() { CurrentTheme = prev })
	CurrentTheme.SignalLow = Color{lipgloss.Color("#ff0000")}
	CurrentTheme.SignalHigh = Color{lipgloss.Color("#00ff00")}

	if got := signalColor(0, 4); got != lipgloss.Color("#ff0000") {
		t.Errorf("lowest level: got %v", got)
	}
	if got := signalColor(3, 4); got != lipgloss.Color("#00ff00") {
		t.Errorf("highest level: got %v", got)
	}
	if got := signalColor(1, 4); got == lipgloss.Color("#ff0000") || got == lipgloss.Color("#00ff00") {
		t.Errorf("middle level should blend, got %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("Police Surveillance Van 2", 10); got != "Police Su…" {
		t.Errorf("got %q", got)
	}
	if got := truncate("ünïcödé-ssid", 5); got != "ünïc…" {
		t.Errorf("got %q", got)
	}
}

func TestRender(t *testing.T) {
	saved := wifi.NewAccessPointFromConfig(wifi.Configuration{NetworkID: 1, SSID: `"home"`, KeyMgmt: wifi.KeyMgmtWPAPSK})
	items := []list.Item{accessPointItem{AccessPoint: *saved, levels: 4}}
	l := list.New(items, newItemDelegate(), 80, 10)

	var buf bytes.Buffer
	newItemDelegate().Render(&buf, l, 0, items[0])
	out := buf.String()
	if !strings.Contains(out, "home") || !strings.Contains(out, "Saved") {
		t.Errorf("unexpected row: %q", out)
	}
}
