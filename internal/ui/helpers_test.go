package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	apperrors "segunda/internal/errors"
	"segunda/internal/history"
	"segunda/internal/ui/theme"
	"segunda/internal/update"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func stripANSI(s string) string {
	return ansi.Strip(s)
}

type fakeChecker struct {
	mu     sync.Mutex
	result update.Result
	calls  int
}

func (f *fakeChecker) Check(context.Context) update.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result
}

func (f *fakeChecker) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeInstaller struct {
	mu       sync.Mutex
	steps    []update.Progress
	path     string
	err      error
	block    bool
	calls    int
	prepared update.UpdateAvailable
}

func (f *fakeInstaller) Prepare(ctx context.Context, u update.UpdateAvailable, progress update.ProgressFunc) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prepared = u
	steps, path, err, block := f.steps, f.path, f.err, f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", apperrors.New(apperrors.CodeCancelled, "download cancelled", ctx.Err())
	}
	for _, p := range steps {
		progress(p)
	}
	return path, err
}

func (f *fakeInstaller) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeJournal struct {
	mu       sync.Mutex
	checks   []update.Result
	installs []string
	last     time.Time
	err      error
}

func (f *fakeJournal) RecordCheck(_ context.Context, r update.Result) (history.Check, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks = append(f.checks, r)
	return history.Check{}, f.err
}

func (f *fakeJournal) RecordInstall(_ context.Context, version, _ string, outcome string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installs = append(f.installs, version+":"+outcome)
	return f.err
}

func (f *fakeJournal) LastSuccessfulCheck(context.Context) (history.Check, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last.IsZero() {
		return history.Check{}, false, f.err
	}
	return history.Check{CheckedAt: f.last}, true, nil
}

func (f *fakeJournal) Installs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.installs...)
}

var fixedNow = time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC)

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	if cfg.Version == "" {
		cfg.Version = "1.0.3"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "plain"
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return fixedNow }
	}
	app := NewApp(cfg)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	t.Cleanup(app.Close)

	origTTL := statusTTL
	statusTTL = time.Millisecond
	t.Cleanup(func() { statusTTL = origTTL })

	origTheme := theme.CurrentName()
	t.Cleanup(func() { theme.SetTheme(origTheme) })
	return app
}

// pump runs commands against the app the way the Bubble Tea runtime would,
// minus spinner animation and status expiry.
type pump struct {
	t    *testing.T
	app  *App
	quit bool
}

func newPump(t *testing.T, app *App) *pump {
	return &pump{t: t, app: app}
}

func (p *pump) run(cmd tea.Cmd) {
	p.t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			p.t.Fatalf("command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			p.quit = true
		case spinner.TickMsg, clearStatusMsg:
		default:
			_, cmd := p.app.Update(msg)
			queue = append(queue, cmd)
		}
	}
}

func (p *pump) press(keys ...string) {
	p.t.Helper()
	for _, k := range keys {
		_, cmd := p.app.Update(keyMsg(k))
		p.run(cmd)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func viewText(app *App) string {
	return stripANSI(app.View())
}

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q:\n%s", needle, haystack)
	}
}

var errBoom = errors.New("boom")
