package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	wifilog "github.com/shazow/wifilist/internal/log"
	"github.com/shazow/wifilist/internal/tui"
	"github.com/shazow/wifilist/wifi"
	"github.com/shazow/wifilist/wifi/tracker"
)

var (
	// Version is the version of the application. It is set at build time.
	Version string = "dev"
)

const debugLogFile = "wifilist-debug.log"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var (
		rootFlagSet  = flag.NewFlagSet("wifilist", flag.ExitOnError)
		theme        = rootFlagSet.String("theme", "", "path to theme toml file (env: WIFILIST_THEME)")
		_            = rootFlagSet.String("config", "", "path to toml config file (env: WIFILIST_CONFIG)")
		version      = rootFlagSet.Bool("version", false, "display version")
		scanInterval = rootFlagSet.Duration("scan-interval", tracker.DefaultScanInterval, "how often to scan in the TUI")
		scanMaxAge   = rootFlagSet.Duration("scan-max-age", 0, "reuse scan results younger than this")
		levels       = rootFlagSet.Int("levels", wifi.DefaultSignalLevels, "number of signal levels")
		all          = rootFlagSet.Bool("all", false, "include saved networks that are out of range")
		debug        = rootFlagSet.Bool("debug", false, "verbose logging (TUI logs to "+debugLogFile+")")
	)

	newTracker := func(logger *slog.Logger) (*tracker.Tracker, error) {
		b, err := GetBackend(logger)
		if err != nil {
			return nil, err
		}
		return tracker.New(b,
			tracker.WithLogger(logger),
			tracker.WithScanMaxAge(*scanMaxAge),
			tracker.WithEngineOptions(
				wifi.WithSignalLevels(*levels),
				wifi.WithSavedOutOfRange(*all),
			),
		), nil
	}

	// Subcommands log to stderr.
	cliTracker := func() (*tracker.Tracker, error) {
		level := slog.LevelWarn
		if *debug {
			level = slog.LevelDebug
		}
		logger := wifilog.Init(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return newTracker(logger)
	}

	listFlagSet := flag.NewFlagSet("list", flag.ExitOnError)
	listJSON := listFlagSet.Bool("json", false, "output in JSON format")
	listScan := listFlagSet.Bool("scan", true, "scan before listing")
	listCmd := &ffcli.Command{
		Name:       "list",
		ShortUsage: "wifilist list [-json] [-scan=false]",
		ShortHelp:  "List wifi networks, best first",
		FlagSet:    listFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			t, err := cliTracker()
			if err != nil {
				return err
			}
			return runList(os.Stdout, *listJSON, *listScan, t)
		},
	}

	showFlagSet := flag.NewFlagSet("show", flag.ExitOnError)
	showJSON := showFlagSet.Bool("json", false, "output in JSON format")
	showCmd := &ffcli.Command{
		Name:       "show",
		ShortUsage: "wifilist show [-json] <ssid>",
		ShortHelp:  "Show a wifi network",
		FlagSet:    showFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("show requires an ssid")
			}
			t, err := cliTracker()
			if err != nil {
				return err
			}
			return runShow(os.Stdout, *showJSON, args[0], t)
		},
	}

	connectFlagSet := flag.NewFlagSet("connect", flag.ExitOnError)
	connectPassword := connectFlagSet.String("password", "", "password for the network (env: WIFILIST_PASSWORD)")
	connectCmd := &ffcli.Command{
		Name:       "connect",
		ShortUsage: "wifilist connect [-password <password>] <ssid>",
		ShortHelp:  "Connect to a wifi network",
		FlagSet:    connectFlagSet,
		Options:    []ff.Option{ff.WithEnvVarPrefix("WIFILIST")},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("connect requires an ssid")
			}
			t, err := cliTracker()
			if err != nil {
				return err
			}
			return runConnect(os.Stdout, args[0], *connectPassword, t)
		},
	}

	forgetCmd := &ffcli.Command{
		Name:       "forget",
		ShortUsage: "wifilist forget <ssid>",
		ShortHelp:  "Forget a saved wifi network",
		FlagSet:    flag.NewFlagSet("forget", flag.ExitOnError),
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("forget requires an ssid")
			}
			t, err := cliTracker()
			if err != nil {
				return err
			}
			return runForget(os.Stdout, args[0], t)
		},
	}

	shareFlagSet := flag.NewFlagSet("share", flag.ExitOnError)
	sharePassword := shareFlagSet.String("password", "", "password to share when the saved one is not readable")
	shareCmd := &ffcli.Command{
		Name:       "share",
		ShortUsage: "wifilist share [-password <password>] <ssid>",
		ShortHelp:  "Print a QR code for joining a wifi network",
		FlagSet:    shareFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("share requires an ssid")
			}
			t, err := cliTracker()
			if err != nil {
				return err
			}
			return runShare(os.Stdout, args[0], *sharePassword, t)
		},
	}

	root := &ffcli.Command{
		ShortUsage:  "wifilist [flags] <subcommand> [args...]",
		FlagSet:     rootFlagSet,
		Subcommands: []*ffcli.Command{listCmd, showCmd, connectCmd, forgetCmd, shareCmd},
		Options: []ff.Option{
			ff.WithEnvVarPrefix("WIFILIST"),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(tomlParser),
			ff.WithAllowMissingConfigFile(true),
		},
		Exec: func(ctx context.Context, args []string) error {
			logger, closeLog, err := tuiLogger(*debug)
			if err != nil {
				return err
			}
			defer closeLog()
			t, err := newTracker(logger)
			if err != nil {
				return err
			}
			return runTUI(ctx, t, *scanInterval)
		},
	}

	if err := root.Parse(args); err != nil {
		return err
	}

	if *version {
		fmt.Println(Version)
		return nil
	}

	if *theme != "" {
		if err := loadTheme(*theme); err != nil {
			return fmt.Errorf("error loading theme: %w", err)
		}
	}

	return root.Run(ctx)
}

func loadTheme(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	th, err := tui.LoadTheme(f)
	if err != nil {
		return err
	}
	tui.CurrentTheme = th
	return nil
}

// tuiLogger keeps logs off the terminal while the TUI owns it.
func tuiLogger(debug bool) (*slog.Logger, func(), error) {
	if !debug {
		return wifilog.Init(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(debugLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	logger := wifilog.Init(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

func runTUI(ctx context.Context, t *tracker.Tracker, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := tui.NewModel(t)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	logs := make(chan tea.Msg, 16)
	wifilog.SetOutput(logs)
	defer wifilog.SetOutput(nil)
	go func() {
		for {
			select {
			case msg := <-logs:
				p.Send(msg)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		if err := t.Run(ctx, interval); err != nil {
			slog.Error("tracker stopped", "error", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
