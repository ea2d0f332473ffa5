package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	greeting      = "HOLA MUNDO!"
)

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting && a.pending == nil {
		return ""
	}
	width, height := a.width, a.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	canvas := NewCanvas(width, height)
	canvas.DrawStringAt(0, 0, a.renderHeader(width))

	body := a.renderBody(width)
	bodyLines := splitLines(body)
	x, y := centeredOffsets(width, height, maxLineWidth(bodyLines), len(bodyLines), 1, 1)
	canvas.DrawStringAt(x, y, body)

	canvas.DrawStringAt(0, height-1, truncateLines(a.renderFooter(), width))

	switch {
	case a.progress != nil:
		canvas.CenterOverlay(a.progress.View(), 1, 1)
	case a.dialog != nil:
		canvas.CenterOverlay(a.dialog.View(), 1, 1)
	}
	return canvas.Render()
}

func (a *App) renderHeader(width int) string {
	return styleAppHeader().Width(width).Render("segunda " + a.displayVersion())
}

func (a *App) displayVersion() string {
	v := strings.TrimSpace(a.cfg.Version)
	if v == "" {
		return "dev"
	}
	if v[0] >= '0' && v[0] <= '9' {
		return "v" + v
	}
	return v
}

func (a *App) renderBody(width int) string {
	button := "Check for updates"
	if a.op == opStartupCheck || a.op == opManualCheck {
		button = a.spinner.View() + " Checking for updates…"
	}

	lines := []string{
		styleGreeting().Render(greeting),
		styleVersion().Render("Version " + a.displayVersion()),
		"",
		styleButton(a.dialog == nil && a.progress == nil).Render(button),
		"",
	}
	if a.status != "" {
		lines = append(lines, styleStatus().Render(a.status))
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, styleVersion().Render(a.lastCheckedText()))

	return truncateLines(lipgloss.JoinVertical(lipgloss.Center, lines...), width)
}

func (a *App) lastCheckedText() string {
	if a.lastChecked.IsZero() {
		return "Never checked for updates"
	}
	return "Last checked " + humanize.RelTime(a.lastChecked, a.now(), "ago", "from now")
}

func (a *App) renderFooter() string {
	if a.dialog != nil || a.progress != nil {
		return ""
	}
	return renderHints([]footerHint{
		hintFor(a.keys.Check),
		hintFor(a.keys.Theme),
		hintFor(a.keys.Quit),
	})
}
