package tui

import (
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
)

// Color is a lipgloss color that can be read from TOML, either as a single
// "#RRGGBB" string or as a ["light", "dark"] pair.
type Color struct {
	lipgloss.TerminalColor
}

// UnmarshalTOML implements toml.Unmarshaler.
func (c *Color) UnmarshalTOML(v interface{}) error {
	switch v := v.(type) {
	case string:
		c.TerminalColor = lipgloss.Color(v)
		return nil
	case []interface{}:
		if len(v) != 2 {
			return fmt.Errorf("adaptive color needs 2 values, got %d", len(v))
		}
		light, ok1 := v[0].(string)
		dark, ok2 := v[1].(string)
		if !ok1 || !ok2 {
			return errors.New("adaptive color values must be strings")
		}
		c.TerminalColor = lipgloss.AdaptiveColor{Light: light, Dark: dark}
		return nil
	}
	return fmt.Errorf("unsupported color value: %v", v)
}

// hex resolves c to a hex string for the terminal's background.
func (c Color) hex() string {
	switch tc := c.TerminalColor.(type) {
	case lipgloss.Color:
		return string(tc)
	case lipgloss.AdaptiveColor:
		if lipgloss.HasDarkBackground() {
			return tc.Dark
		}
		return tc.Light
	}
	return ""
}

// LoadTheme reads a TOML theme. Colors missing from the file keep their
// default values.
func LoadTheme(r io.Reader) (Theme, error) {
	theme := NewDefaultTheme()
	if r == nil {
		return theme, errors.New("no theme to load")
	}
	md, err := toml.NewDecoder(r).Decode(&theme)
	if err != nil {
		return NewDefaultTheme(), fmt.Errorf("failed to parse theme: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return NewDefaultTheme(), fmt.Errorf("unknown theme keys: %v", undecoded)
	}
	return theme, nil
}
