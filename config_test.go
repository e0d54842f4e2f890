package main

import (
	"flag"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTomlParser(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	interval := fs.Duration("scan-interval", 0, "")
	levels := fs.Int("levels", 4, "")
	all := fs.Bool("all", false, "")
	theme := fs.String("theme", "", "")

	r := strings.NewReader(`
scan-interval = "30s"
levels = 5
all = true
theme = "/tmp/theme.toml"
`)
	var got []string
	err := tomlParser(r, func(name, value string) error {
		got = append(got, name+"="+value)
		return fs.Set(name, value)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"all=true", "levels=5", "scan-interval=30s", "theme=/tmp/theme.toml"}, got)
	assert.Equal(t, 30*time.Second, *interval)
	assert.Equal(t, 5, *levels)
	assert.True(t, *all)
	assert.Equal(t, "/tmp/theme.toml", *theme)
}

func TestTomlParserArrays(t *testing.T) {
	var got []string
	err := tomlParser(strings.NewReader(`tag = ["a", "b"]`), func(name, value string) error {
		got = append(got, value)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestTomlParserErrors(t *testing.T) {
	set := func(name, value string) error { return nil }
	assert.Error(t, tomlParser(strings.NewReader(`levels = `), set))
	assert.Error(t, tomlParser(strings.NewReader("[theme]\nPrimary = \"#fff\""), set))
}

func TestTomlParserWithFF(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	levels := fs.Int("levels", 4, "")
	_ = fs.String("config", "", "")

	path := t.TempDir() + "/config.toml"
	require.NoError(t, os.WriteFile(path, []byte("levels = 3\n"), 0o600))

	err := ff.Parse(fs, []string{"-config", path},
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(tomlParser),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, *levels)
}
