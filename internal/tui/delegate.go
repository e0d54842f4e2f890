package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const ssidColumnWidth = 30

// itemDelegate is our custom list delegate
type itemDelegate struct {
	list.DefaultDelegate
}

func newItemDelegate() itemDelegate {
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	d.SetSpacing(0)
	return itemDelegate{DefaultDelegate: d}
}

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(accessPointItem)
	if !ok {
		// Fallback to default render for any other item types
		d.DefaultDelegate.Render(w, m, index, listItem)
		return
	}

	icon := "🔓 "
	if i.RequiresCredentials {
		icon = "🔒 "
	}
	title := icon + truncate(i.SSID, ssidColumnWidth-lipgloss.Width(icon))
	padding := ""
	if n := ssidColumnWidth - lipgloss.Width(title); n > 0 {
		padding = strings.Repeat(" ", n)
	}
	title = titleStyle(i).Render(title)

	level := i.SignalLevel(i.levels)
	bars := signalBars(level, i.levels, i.InRange)
	var desc string
	if i.InRange {
		desc = lipgloss.NewStyle().Foreground(signalColor(level, i.levels)).Render(bars)
	} else {
		desc = lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render(bars)
	}
	if s := i.Description(); s != "" {
		style := lipgloss.NewStyle().Foreground(CurrentTheme.Subtle)
		if i.CredentialRejected() {
			style = style.Foreground(CurrentTheme.Error)
		}
		desc += " " + style.Render(s)
	}

	line := title + padding + " " + desc
	lineStyle := lipgloss.NewStyle().PaddingLeft(1)
	if index == m.Index() {
		lineStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true). // Left border
			BorderForeground(CurrentTheme.Primary)
	}
	fmt.Fprint(w, lineStyle.Render(line))
}

func titleStyle(i accessPointItem) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
	switch {
	case i.Active():
		return style.Foreground(CurrentTheme.Success).Bold(true)
	case i.CredentialRejected():
		return style.Foreground(CurrentTheme.Error)
	case i.Saved():
		return style.Foreground(CurrentTheme.Success)
	case !i.InRange:
		return style.Foreground(CurrentTheme.Disabled)
	}
	return style
}

// signalBars draws level out of levels buckets. Bucket 0 still shows one bar
// while in range.
func signalBars(level, levels int, inRange bool) string {
	if levels < 1 {
		return ""
	}
	filled := 0
	if inRange {
		filled = level + 1
	}
	return strings.Repeat("▮", filled) + strings.Repeat("▯", levels-filled)
}

// signalColor blends between the low and high signal colors of the theme.
func signalColor(level, levels int) lipgloss.TerminalColor {
	start, err := colorful.Hex(CurrentTheme.SignalLow.hex())
	if err != nil {
		return CurrentTheme.SignalLow
	}
	end, err := colorful.Hex(CurrentTheme.SignalHigh.hex())
	if err != nil {
		return CurrentTheme.SignalHigh
	}
	p := 1.0
	if levels > 1 {
		p = float64(level) / float64(levels-1)
	}
	return lipgloss.Color(start.BlendRgb(end, p).Hex())
}

func truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
