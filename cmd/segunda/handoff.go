package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"segunda/internal/debug"
	"segunda/internal/history"
	"segunda/internal/relaunch"
	"segunda/internal/ui"
)

type installRecorder interface {
	RecordInstall(ctx context.Context, version, path, outcome string) error
}

// handOff gives the downloaded build to the relaunch helper. In exec mode a
// successful hand-off never returns, so the journal entry is written first.
func handOff(w io.Writer, req *ui.RelaunchRequest, helper relaunch.Helper, currentPath string, rec installRecorder) int {
	record := func(outcome string) {
		if rec == nil {
			return
		}
		if err := rec.RecordInstall(context.Background(), req.Version, req.NewPath, outcome); err != nil {
			debug.Errorf("history: record install", err)
		}
	}

	if strings.TrimSpace(currentPath) == "" {
		record(history.InstallFailed)
		_, _ = fmt.Fprint(w, formatManualInstallMessage(req, currentPath, fmt.Errorf("could not locate the running executable")))
		return 1
	}

	record(history.InstallRelaunched)
	debug.Logf("relaunch: handing %s to helper for %s", req.NewPath, currentPath)
	if err := helper.RelaunchAfterReplace(req.NewPath, currentPath); err != nil {
		debug.Errorf("relaunch", err)
		record(history.InstallFailed)
		_, _ = fmt.Fprint(w, formatManualInstallMessage(req, currentPath, err))
		return 1
	}
	return 0
}

func formatManualInstallMessage(req *ui.RelaunchRequest, currentPath string, err error) string {
	target := currentPath
	if strings.TrimSpace(target) == "" {
		target = "the segunda executable"
	}
	errorText := "unknown error"
	if err != nil {
		if text := strings.TrimSpace(err.Error()); text != "" {
			errorText = text
		}
	}
	return fmt.Sprintf(`Error: segunda could not restart itself

Version %s was downloaded to:
  %s

To finish the update:
  1. Make sure segunda is not running.
  2. Replace %s
     with the downloaded file.
  3. Start segunda again.

Error: %s

`, req.Version, req.NewPath, target, errorText)
}
