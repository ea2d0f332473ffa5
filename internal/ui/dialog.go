package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"segunda/internal/ui/theme"
	"segunda/internal/update"
)

const (
	dialogWidth      = 52
	notesExcerptLen  = 200
	fileNotFoundText = "Update file not found."
)

// DialogKind selects the dialog layout and key handling.
type DialogKind int

const (
	// DialogConfirm asks whether to install an available update.
	DialogConfirm DialogKind = iota
	// DialogError reports a failure.
	DialogError
	// DialogInfo reports a neutral outcome such as being up to date.
	DialogInfo
)

// Dialog is a modal shown over the main screen.
type Dialog struct {
	kind    DialogKind
	title   string
	message string
	update  update.UpdateAvailable
	notes   string
	keys    KeyMap
}

// dialogAcceptedMsg is sent when the user confirms an update.
type dialogAcceptedMsg struct {
	update update.UpdateAvailable
}

// dialogClosedMsg is sent when a dialog is dismissed without action.
type dialogClosedMsg struct{}

// copyURLMsg asks the app to copy the download URL to the clipboard.
type copyURLMsg struct {
	url string
}

func newUpdateDialog(u update.UpdateAvailable, keys KeyMap, format string) *Dialog {
	notes := u.ReleaseNotes
	if strings.TrimSpace(notes) == "" {
		notes = update.DefaultReleaseNotes
	}
	render := buildMarkdownRenderer(format, dialogWidth)
	return &Dialog{
		kind:    DialogConfirm,
		title:   "Update available",
		message: fmt.Sprintf("Version %s is available. You are running %s.", u.Latest, u.Current),
		update:  u,
		notes:   render(excerpt(notes, notesExcerptLen)),
		keys:    keys,
	}
}

func newErrorDialog(title, message string, keys KeyMap) *Dialog {
	return &Dialog{kind: DialogError, title: title, message: message, keys: keys}
}

func newInfoDialog(title, message string, keys KeyMap) *Dialog {
	return &Dialog{kind: DialogInfo, title: title, message: message, keys: keys}
}

// Kind returns the dialog kind.
func (d *Dialog) Kind() DialogKind {
	return d.kind
}

// Update handles a key press and returns the resulting command.
func (d *Dialog) Update(msg tea.KeyMsg) tea.Cmd {
	if d.kind != DialogConfirm {
		if key.Matches(msg, d.keys.Dismiss) {
			return func() tea.Msg { return dialogClosedMsg{} }
		}
		return nil
	}

	switch {
	case key.Matches(msg, d.keys.Accept):
		u := d.update
		return func() tea.Msg { return dialogAcceptedMsg{update: u} }
	case key.Matches(msg, d.keys.Decline):
		return func() tea.Msg { return dialogClosedMsg{} }
	case key.Matches(msg, d.keys.Copy):
		url := d.update.DownloadURL
		return func() tea.Msg { return copyURLMsg{url: url} }
	}
	return nil
}

// View renders the dialog box.
func (d *Dialog) View() string {
	t := theme.Current()
	border := t.BorderFocused()
	titleColor := t.Primary()
	switch d.kind {
	case DialogError:
		border, titleColor = t.Error(), t.Error()
	case DialogInfo:
		titleColor = t.Success()
	}

	text := styleDialogText()
	divider := lipgloss.NewStyle().
		Foreground(border).
		Background(t.BackgroundSecondary()).
		Render(strings.Repeat("─", dialogWidth))

	lines := []string{
		styleDialogTitle(titleColor).Render(d.title),
		divider,
		"",
		text.Render(wordwrap.String(d.message, dialogWidth)),
	}

	var hints []footerHint
	if d.kind == DialogConfirm {
		lines = append(lines, "", d.notes, "", text.Bold(true).Render("Update now?"))
		hints = []footerHint{hintFor(d.keys.Accept), hintFor(d.keys.Decline)}
		if d.update.DownloadURL != "" {
			hints = append(hints, hintFor(d.keys.Copy))
		}
	} else {
		hints = []footerHint{hintFor(d.keys.Dismiss)}
	}
	lines = append(lines, "", divider, renderHints(hints))

	return styleDialog(border).Render(strings.Join(lines, "\n"))
}
