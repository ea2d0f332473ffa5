package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"segunda/internal/history"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	primaryColor = lipgloss.Color("#7D56F4")
	dimColor     = lipgloss.Color("#6272A4")
	successColor = lipgloss.Color("#50FA7B")
	errorColor   = lipgloss.Color("#FF5555")
)

type historyReader interface {
	RecentChecks(ctx context.Context, limit int) ([]history.Check, error)
	RecentInstalls(ctx context.Context, limit int) ([]history.Install, error)
}

func showHistory(stdout, stderr io.Writer, journal *history.Journal) int {
	if journal == nil {
		_, _ = fmt.Fprintln(stderr, "Error: update history is unavailable (see --debug for details)")
		return 1
	}
	if err := printHistory(stdout, journal, time.Now()); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// printHistory prints the most recent checks and install attempts.
func printHistory(w io.Writer, r historyReader, now time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), historyOpenTimeout)
	defer cancel()

	checks, err := r.RecentChecks(ctx, historyListLimit)
	if err != nil {
		return fmt.Errorf("read checks: %w", err)
	}
	installs, err := r.RecentInstalls(ctx, historyListLimit)
	if err != nil {
		return fmt.Errorf("read installs: %w", err)
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	dimStyle := lipgloss.NewStyle().Foreground(dimColor)

	_, _ = fmt.Fprintln(w, titleStyle.Render("Update checks"))
	if len(checks) == 0 {
		_, _ = fmt.Fprintln(w, dimStyle.Render("  none yet"))
	}
	for _, c := range checks {
		_, _ = fmt.Fprintf(w, "  %s  %s  %s\n",
			dimStyle.Render(formatWhen(c.CheckedAt, now)),
			outcomeStyle(c.Outcome).Render(c.Outcome),
			describeCheck(c))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, titleStyle.Render("Installs"))
	if len(installs) == 0 {
		_, _ = fmt.Fprintln(w, dimStyle.Render("  none yet"))
	}
	for _, in := range installs {
		_, _ = fmt.Fprintf(w, "  %s  %s  v%s\n",
			dimStyle.Render(formatWhen(in.StartedAt, now)),
			outcomeStyle(in.Outcome).Render(in.Outcome),
			in.Version)
	}
	return nil
}

func describeCheck(c history.Check) string {
	switch c.Outcome {
	case history.OutcomeAvailable:
		return fmt.Sprintf("v%s -> v%s", c.Current, c.Latest)
	case history.OutcomeUpToDate:
		return "v" + c.Current
	default:
		return c.Detail
	}
}

func outcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case history.OutcomeFailed, history.InstallCancelled:
		return lipgloss.NewStyle().Foreground(errorColor)
	case history.OutcomeAvailable, history.InstallRelaunched, history.InstallPrepared:
		return lipgloss.NewStyle().Foreground(successColor)
	default:
		return lipgloss.NewStyle()
	}
}

// formatWhen renders t relative to now, e.g. "5 minutes ago".
func formatWhen(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
