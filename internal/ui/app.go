// Package ui implements the segunda terminal interface: the greeting screen,
// update dialogs and the download progress modal.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"segunda/internal/debug"
	apperrors "segunda/internal/errors"
	"segunda/internal/history"
	"segunda/internal/ui/theme"
	"segunda/internal/update"
)

// statusTTL is how long transient status messages stay visible.
var statusTTL = 4 * time.Second

// Checker queries the release feed.
type Checker interface {
	Check(ctx context.Context) update.Result
}

// Installer downloads and verifies an update.
type Installer interface {
	Prepare(ctx context.Context, u update.UpdateAvailable, progress update.ProgressFunc) (string, error)
}

// Journal records checks and install attempts. It may be nil.
type Journal interface {
	RecordCheck(ctx context.Context, r update.Result) (history.Check, error)
	RecordInstall(ctx context.Context, version, path, outcome string) error
	LastSuccessfulCheck(ctx context.Context) (history.Check, bool, error)
}

// Config wires the App to its collaborators.
type Config struct {
	Version        string
	Checker        Checker
	Installer      Installer
	Journal        Journal
	CheckOnStartup bool
	OutputFormat   string
	OnThemeChange  func(name string) error
	Now            func() time.Time
}

// RelaunchRequest is left behind when the user installed an update. The
// caller hands it to a relaunch helper once the program has exited.
type RelaunchRequest struct {
	NewPath string
	Version string
}

type operation int

const (
	opIdle operation = iota
	opStartupCheck
	opManualCheck
	opDownload
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// App is the application context: it owns the terminal size, the context
// for background work, the event channel from the download goroutine, the
// open dialog and the pending relaunch.
type App struct {
	cfg  Config
	keys KeyMap
	now  func() time.Time

	width  int
	height int

	ctx      context.Context
	cancel   context.CancelFunc
	opCancel context.CancelFunc
	events   <-chan tea.Msg

	op          operation
	spinner     spinner.Model
	dialog      *Dialog
	progress    *ProgressModal
	status      string
	lastChecked time.Time
	pending     *RelaunchRequest
	quitting    bool
}

// NewApp creates the root model.
func NewApp(cfg Config) *App {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &App{
		cfg:     cfg,
		keys:    DefaultKeyMap(),
		now:     now,
		ctx:     ctx,
		cancel:  cancel,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.loadLastChecked()}
	if a.cfg.CheckOnStartup {
		cmds = append(cmds, a.startCheck(opStartupCheck))
	}
	return tea.Batch(cmds...)
}

// PendingRelaunch returns the relaunch request, or nil if none was made.
func (a *App) PendingRelaunch() *RelaunchRequest {
	return a.pending
}

// Close cancels any background work.
func (a *App) Close() {
	if a.opCancel != nil {
		a.opCancel()
	}
	a.cancel()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		if a.op != opStartupCheck && a.op != opManualCheck {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case lastCheckedMsg:
		if msg.at.After(a.lastChecked) {
			a.lastChecked = msg.at
		}
		return a, nil

	case checkResultMsg:
		return a, a.handleCheckResult(msg)

	case dialogAcceptedMsg:
		a.dialog = nil
		return a, a.acceptUpdate(msg.update)

	case dialogClosedMsg:
		a.dialog = nil
		return a, nil

	case copyURLMsg:
		return a, a.copyURL(msg.url)

	case downloadProgressMsg:
		if a.progress != nil {
			a.progress.SetProgress(msg.progress)
		}
		return a, waitForEvent(a.events)

	case downloadDoneMsg:
		return a, a.handleDownloadDone(msg)

	case clearStatusMsg:
		if a.status == msg.text {
			a.status = ""
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, a.quit()
	}

	if a.op == opDownload {
		if key.Matches(msg, a.keys.Cancel) && a.opCancel != nil {
			a.opCancel()
			if a.progress != nil {
				a.progress.SetLabel("Cancelling…")
			}
		}
		return a, nil
	}

	if a.dialog != nil {
		return a, a.dialog.Update(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, a.quit()
	case key.Matches(msg, a.keys.Check):
		switch a.op {
		case opIdle:
			return a, a.startCheck(opManualCheck)
		case opStartupCheck:
			// Let the running check answer the button instead of starting another.
			a.op = opManualCheck
		}
		return a, nil
	case key.Matches(msg, a.keys.Theme):
		return a, a.cycleTheme()
	}
	return a, nil
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	a.Close()
	return tea.Quit
}

func (a *App) startCheck(op operation) tea.Cmd {
	if a.cfg.Checker == nil {
		return nil
	}
	a.op = op
	a.status = ""
	checker, journal, ctx, now := a.cfg.Checker, a.cfg.Journal, a.ctx, a.now
	check := func() tea.Msg {
		result := checker.Check(ctx)
		if journal != nil {
			if _, err := journal.RecordCheck(ctx, result); err != nil {
				debug.Errorf("history: record check", err)
			}
		}
		return checkResultMsg{result: result, checkedAt: now()}
	}
	return tea.Batch(a.spinner.Tick, check)
}

func (a *App) handleCheckResult(msg checkResultMsg) tea.Cmd {
	manual := a.op == opManualCheck
	a.op = opIdle
	if _, failed := msg.result.(update.CheckFailed); !failed {
		a.lastChecked = msg.checkedAt
	}

	switch r := msg.result.(type) {
	case update.UpdateAvailable:
		debug.Logf("update: %s available (running %s)", r.Latest, r.Current)
		a.dialog = newUpdateDialog(r, a.keys, a.cfg.OutputFormat)
	case update.NoUpdate:
		debug.Logf("update: up to date at %s", r.Current)
		if manual {
			a.dialog = newInfoDialog("No updates",
				fmt.Sprintf("You are running the latest version (%s).", r.Current), a.keys)
		}
	case update.CheckFailed:
		debug.Errorf("update: check", r)
		if manual {
			a.dialog = newErrorDialog("Update check failed", r.Reason, a.keys)
		}
	}
	return nil
}

func (a *App) acceptUpdate(u update.UpdateAvailable) tea.Cmd {
	if u.DownloadURL == "" {
		a.dialog = newErrorDialog("Update failed", fileNotFoundText, a.keys)
		return nil
	}
	if a.op != opIdle || a.cfg.Installer == nil {
		return nil
	}

	ctx, cancel := context.WithCancel(a.ctx)
	a.opCancel = cancel
	a.op = opDownload
	a.progress = newProgressModal(u.Latest, a.keys)

	events := make(chan tea.Msg, 16)
	a.events = events
	installer, journal := a.cfg.Installer, a.cfg.Journal
	go func() {
		defer close(events)
		path, err := installer.Prepare(ctx, u, func(p update.Progress) {
			// Progress is advisory; drop updates rather than stall the download.
			select {
			case events <- downloadProgressMsg{progress: p}:
			default:
			}
		})
		if journal != nil {
			if jerr := journal.RecordInstall(context.Background(), u.Latest, path, installOutcome(err)); jerr != nil {
				debug.Errorf("history: record install", jerr)
			}
		}
		events <- downloadDoneMsg{version: u.Latest, path: path, err: err}
	}()
	return waitForEvent(events)
}

func installOutcome(err error) string {
	switch {
	case err == nil:
		return history.InstallPrepared
	case apperrors.IsCode(err, apperrors.CodeCancelled):
		return history.InstallCancelled
	default:
		return history.InstallFailed
	}
}

func (a *App) handleDownloadDone(msg downloadDoneMsg) tea.Cmd {
	if a.opCancel != nil {
		a.opCancel()
		a.opCancel = nil
	}
	a.op = opIdle
	a.events = nil

	if msg.err == nil {
		a.progress.SetProgress(update.Progress{Percent: 100})
		a.progress.SetLabel("Installing… segunda will restart.")
		a.pending = &RelaunchRequest{NewPath: msg.path, Version: msg.version}
		a.quitting = true
		a.cancel()
		return tea.Quit
	}

	a.progress = nil
	debug.Errorf("update: download", msg.err)
	switch apperrors.CodeOf(msg.err) {
	case apperrors.CodeCancelled:
		return a.setStatus("Update cancelled.")
	case apperrors.CodeAssetNotFound:
		a.dialog = newErrorDialog("Update failed", fileNotFoundText, a.keys)
	case apperrors.CodeVerificationFailed:
		a.dialog = newErrorDialog("Update failed", "The download could not be verified: "+msg.err.Error(), a.keys)
	case apperrors.CodePermissionDenied:
		a.dialog = newErrorDialog("Update failed", "Permission denied: "+msg.err.Error(), a.keys)
	default:
		a.dialog = newErrorDialog("Update failed", "Could not download the update: "+msg.err.Error(), a.keys)
	}
	return nil
}

func (a *App) copyURL(url string) tea.Cmd {
	if url == "" {
		return a.setStatus(fileNotFoundText)
	}
	if err := writeClipboard(url); err != nil {
		debug.Errorf("clipboard", err)
		return a.setStatus("Could not copy the download URL.")
	}
	return a.setStatus("Download URL copied.")
}

func (a *App) cycleTheme() tea.Cmd {
	name := theme.CycleTheme()
	if a.cfg.OnThemeChange != nil {
		if err := a.cfg.OnThemeChange(name); err != nil {
			debug.Errorf("theme: save", err)
			return a.setStatus(fmt.Sprintf("Theme %s (not saved)", name))
		}
	}
	return a.setStatus("Theme " + name)
}

func (a *App) setStatus(text string) tea.Cmd {
	a.status = text
	return scheduleClearStatus(text, statusTTL)
}

func (a *App) loadLastChecked() tea.Cmd {
	journal, ctx := a.cfg.Journal, a.ctx
	if journal == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok, err := journal.LastSuccessfulCheck(ctx)
		if err != nil {
			debug.Errorf("history: last check", err)
			return nil
		}
		if !ok {
			return nil
		}
		return lastCheckedMsg{at: c.CheckedAt}
	}
}
