package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"segunda/internal/update"
)

// checkResultMsg carries the outcome of a background check.
type checkResultMsg struct {
	result    update.Result
	checkedAt time.Time
}

// lastCheckedMsg carries the time of the last successful check from the journal.
type lastCheckedMsg struct {
	at time.Time
}

// downloadProgressMsg reports download progress from the installer goroutine.
type downloadProgressMsg struct {
	progress update.Progress
}

// downloadDoneMsg ends a download. path is empty when err is set.
type downloadDoneMsg struct {
	version string
	path    string
	err     error
}

// clearStatusMsg clears the status line if it still shows the same text.
type clearStatusMsg struct {
	text string
}

// waitForEvent returns a command that reads the next message from a
// background worker. A closed channel yields nil.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func scheduleClearStatus(text string, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{text: text}
	})
}
