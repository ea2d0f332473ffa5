package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"segunda/internal/config"
	"segunda/internal/debug"
	"segunda/internal/history"
	"segunda/internal/relaunch"
	"segunda/internal/ui"
	"segunda/internal/ui/theme"
	"segunda/internal/update"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	historyOpenTimeout = 3 * time.Second
	historyListLimit   = 10
)

func main() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}

	versionFlag := flag.Bool("version", false, "Print version information and exit")
	debugFlag := flag.Bool("debug", config.GetBool(config.KeyDebug), "Write a diagnostic log to ~/.segunda/debug.log")
	skipUpdateCheckFlag := flag.Bool("skip-update-check", config.GetBool(config.KeySkipUpdateCheck), "Skip the update check on startup (or set SEGUNDA_SKIP_UPDATE_CHECK=true)")
	feedURLFlag := flag.String("feed-url", config.GetString(config.KeyFeedURL), "Release feed URL")
	themeFlag := flag.String("theme", config.GetString(config.KeyTheme), "Color theme ("+strings.Join(theme.Available(), ", ")+")")
	historyFlag := flag.Bool("history", false, "Print recent update checks and installs, then exit")
	flag.Parse()

	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	visited := map[string]struct{}{}
	flag.CommandLine.Visit(func(f *flag.Flag) {
		visited[f.Name] = struct{}{}
	})

	opts := computeRuntimeOptions(runtimeFlags{
		debug:           debugFlag,
		skipUpdateCheck: skipUpdateCheckFlag,
		feedURL:         feedURLFlag,
		theme:           themeFlag,
		showHistory:     historyFlag,
	}, visited)

	if err := debug.Init(opts.debug); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug log unavailable: %v\n", err)
	}
	code := run(opts, os.Stdout, os.Stderr)
	debug.Close()
	os.Exit(code)
}

func run(opts runtimeOptions, stdout, stderr io.Writer) int {
	exe, err := relaunch.CurrentExecutable()
	if err != nil {
		debug.Errorf("resolve executable", err)
	} else if err := debug.RecordStartup(exe, time.Now(), os.Getpid()); err != nil {
		debug.Errorf("startup log", err)
	}

	journal := openJournal(opts.historyPath)
	if journal != nil {
		defer func() { _ = journal.Close() }()
	}

	if opts.showHistory {
		return showHistory(stdout, stderr, journal)
	}

	if opts.theme != "" && !theme.SetTheme(opts.theme) {
		fmt.Fprintf(stderr, "Warning: unknown theme %q, using %s\n", opts.theme, theme.CurrentName())
	}

	appCfg := ui.Config{
		Version: Version,
		Checker: update.NewChecker(Version,
			update.WithFeedURL(opts.feedURL),
			update.WithTimeout(opts.updateTimeout),
			update.WithAssetSuffix(opts.assetSuffix),
		),
		Installer:      update.NewInstaller(update.WithPublicKey(opts.publicKey)),
		CheckOnStartup: !opts.skipUpdateCheck,
		OutputFormat:   opts.outputFormat,
		OnThemeChange:  config.SaveTheme,
	}
	if journal != nil {
		appCfg.Journal = journal
	}

	app, err := runProgram(appCfg, ui.NewApp, func(app *ui.App) programRunner {
		return tea.NewProgram(app, tea.WithAltScreen())
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	req := app.PendingRelaunch()
	if req == nil {
		return 0
	}
	helper := relaunch.NewScriptHelper(
		relaunch.WithWaitAttempts(opts.waitAttempts),
		relaunch.WithMoveAttempts(opts.moveAttempts),
		relaunch.WithArgs(os.Args[1:]),
	)
	var recorder installRecorder
	if journal != nil {
		recorder = journal
	}
	return handOff(stderr, req, helper, exe, recorder)
}

func openJournal(path string) *history.Journal {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyOpenTimeout)
	defer cancel()
	journal, err := history.Open(ctx, path)
	if err != nil {
		debug.Errorf("history: open", err)
		return nil
	}
	return journal
}

type programRunner interface {
	Run() (tea.Model, error)
}

type programFactory func(*ui.App) programRunner

func runProgram(cfg ui.Config, builder func(ui.Config) *ui.App, factory programFactory) (*ui.App, error) {
	if builder == nil {
		return nil, fmt.Errorf("app builder is nil")
	}
	app := builder(cfg)
	if app == nil {
		return nil, fmt.Errorf("initialize UI: app is nil")
	}
	defer app.Close()
	if factory == nil {
		return nil, fmt.Errorf("program factory is nil")
	}
	prog := factory(app)
	if prog == nil {
		return nil, fmt.Errorf("program is nil")
	}
	if _, err := prog.Run(); err != nil {
		return nil, fmt.Errorf("run UI: %w", err)
	}
	return app, nil
}

type runtimeFlags struct {
	debug           *bool
	skipUpdateCheck *bool
	feedURL         *string
	theme           *string
	showHistory     *bool
}

type runtimeOptions struct {
	debug           bool
	skipUpdateCheck bool
	feedURL         string
	theme           string
	showHistory     bool

	assetSuffix   string
	updateTimeout time.Duration
	publicKey     string
	waitAttempts  int
	moveAttempts  int
	historyPath   string
	outputFormat  string
}

func computeRuntimeOptions(flags runtimeFlags, visited map[string]struct{}) runtimeOptions {
	opts := runtimeOptions{
		debug:           config.GetBool(config.KeyDebug),
		skipUpdateCheck: config.GetBool(config.KeySkipUpdateCheck),
		feedURL:         strings.TrimSpace(config.GetString(config.KeyFeedURL)),
		theme:           strings.TrimSpace(config.GetString(config.KeyTheme)),
		assetSuffix:     strings.TrimSpace(config.GetString(config.KeyAssetSuffix)),
		updateTimeout:   config.GetDuration(config.KeyUpdateTimeout),
		publicKey:       strings.TrimSpace(config.GetString(config.KeyPublicKey)),
		waitAttempts:    config.GetInt(config.KeyWaitAttempts),
		moveAttempts:    config.GetInt(config.KeyMoveAttempts),
		historyPath:     strings.TrimSpace(config.GetString(config.KeyHistoryPath)),
		outputFormat:    strings.TrimSpace(config.GetString(config.KeyOutputFormat)),
	}

	if flagWasExplicitlySet("debug", visited) {
		opts.debug = *flags.debug
	}
	if flagWasExplicitlySet("skip-update-check", visited) {
		opts.skipUpdateCheck = *flags.skipUpdateCheck
	}
	if flagWasExplicitlySet("feed-url", visited) {
		opts.feedURL = strings.TrimSpace(*flags.feedURL)
	}
	if flagWasExplicitlySet("theme", visited) {
		opts.theme = strings.TrimSpace(*flags.theme)
	}
	if flags.showHistory != nil {
		opts.showHistory = *flags.showHistory
	}

	if opts.feedURL == "" {
		opts.feedURL = config.DefaultFeedURL
	}
	if opts.updateTimeout <= 0 {
		opts.updateTimeout = config.DefaultUpdateTimeout
	}
	if opts.waitAttempts <= 0 {
		opts.waitAttempts = config.DefaultWaitAttempts
	}
	if opts.moveAttempts <= 0 {
		opts.moveAttempts = config.DefaultMoveAttempts
	}
	return opts
}

func flagWasExplicitlySet(name string, visited map[string]struct{}) bool {
	if _, ok := visited[name]; ok {
		return true
	}
	f := flag.CommandLine.Lookup(name)
	if f == nil {
		return false
	}
	return f.Value.String() != f.DefValue
}
