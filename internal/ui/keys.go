package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keyboard shortcuts for the main screen and dialogs.
type KeyMap struct {
	Check key.Binding
	Theme key.Binding
	Quit  key.Binding

	// Dialogs
	Accept  key.Binding
	Decline key.Binding
	Copy    key.Binding
	Dismiss key.Binding

	// Progress modal
	Cancel key.Binding
}

// DefaultKeyMap returns the default keybindings for segunda.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Check: key.NewBinding(
			key.WithKeys("enter", "u"),
			key.WithHelp("⏎/u", "Check for updates"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Theme"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Accept: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y/⏎", "Update now"),
		),
		Decline: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "Later"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Copy URL"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc", "y", "n", "q"),
			key.WithHelp("⏎/esc", "Close"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}

// footerHint is a key/description pair rendered as a pill in footers.
type footerHint struct {
	key  string
	desc string
}

func hintFor(b key.Binding) footerHint {
	h := b.Help()
	return footerHint{key: h.Key, desc: h.Desc}
}

func renderHints(hints []footerHint) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, styleKeyPill().Render(h.key)+" "+styleKeyDesc().Render(h.desc))
	}
	return strings.Join(parts, "  ")
}
