package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"

	"segunda/internal/ui/theme"
	"segunda/internal/update"
)

const progressBarWidth = 44

// ProgressModal shows a running download.
type ProgressModal struct {
	version string
	label   string
	bar     progress.Model
	current update.Progress
	keys    KeyMap
}

func newProgressModal(version string, keys KeyMap) *ProgressModal {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressBarWidth))
	return &ProgressModal{
		version: version,
		label:   fmt.Sprintf("Downloading segunda %s…", version),
		bar:     bar,
		keys:    keys,
	}
}

// SetProgress records the latest download progress.
func (p *ProgressModal) SetProgress(pr update.Progress) {
	if pr.Percent < p.current.Percent {
		return
	}
	p.current = pr
}

// SetLabel replaces the status line, e.g. when installation starts.
func (p *ProgressModal) SetLabel(label string) {
	p.label = label
}

// Percent returns the last reported percentage.
func (p *ProgressModal) Percent() int {
	return p.current.Percent
}

// View renders the modal.
func (p *ProgressModal) View() string {
	t := theme.Current()
	text := styleDialogText()

	detail := "Waiting for size…"
	if p.current.Total > 0 {
		detail = fmt.Sprintf("%s / %s (%d%%)",
			humanize.Bytes(uint64(p.current.Written)),
			humanize.Bytes(uint64(p.current.Total)),
			p.current.Percent)
	}

	lines := []string{
		styleDialogTitle(t.Primary()).Render("Updating"),
		"",
		text.Render(p.label),
		"",
		p.bar.ViewAs(float64(p.current.Percent) / 100),
		text.Foreground(t.TextMuted()).Render(detail),
		"",
		renderHints([]footerHint{hintFor(p.keys.Cancel)}),
	}
	return styleDialog(t.BorderFocused()).Render(strings.Join(lines, "\n"))
}
