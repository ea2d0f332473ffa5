package relaunch

import (
	"fmt"
	"strings"
	"text/template"
)

// ScriptData fills the relaunch script templates.
type ScriptData struct {
	NewPath      string
	CurrentPath  string
	ImageName    string
	PID          int
	WaitAttempts int
	MoveAttempts int
	LogPath      string
	Args         []string
}

var funcs = template.FuncMap{
	"sh":  shellQuote,
	"bat": batchQuote,
}

var windowsScript = template.Must(template.New("relaunch.bat").Funcs(funcs).Parse(`@echo off
setlocal
set "TARGET={{.CurrentPath}}"
set "SOURCE={{.NewPath}}"
set "LOG={{.LogPath}}"

set /a WAITED=0
:wait
tasklist /FI "IMAGENAME eq {{.ImageName}}" 2>NUL | find /I "{{.ImageName}}" >NUL
if errorlevel 1 goto replace
set /a WAITED+=1
if %WAITED% GEQ {{.WaitAttempts}} goto waitfailed
timeout /t 1 /nobreak >NUL
goto wait

:waitfailed
echo %DATE% %TIME% {{.ImageName}} still running after {{.WaitAttempts}} attempts>>"%LOG%"
msg * "segunda could not be updated because it is still running. Close it and run the update again."
goto cleanup

:replace
set /a MOVES=0
:move
move /Y "%SOURCE%" "%TARGET%" >NUL 2>&1
if not errorlevel 1 goto relaunch
set /a MOVES+=1
if %MOVES% GEQ {{.MoveAttempts}} goto movefailed
timeout /t 1 /nobreak >NUL
goto move

:movefailed
echo %DATE% %TIME% could not replace "%TARGET%" after {{.MoveAttempts}} attempts>>"%LOG%"
msg * "segunda could not replace its executable. The previous version was kept; run the update again."
goto cleanup

:relaunch
start "" "%TARGET%"{{range .Args}} {{bat .}}{{end}}

:cleanup
(goto) 2>NUL & del "%~f0"
`))

var unixScript = template.Must(template.New("relaunch.sh").Funcs(funcs).Parse(`#!/bin/sh
TARGET={{sh .CurrentPath}}
SOURCE={{sh .NewPath}}
LOG={{sh .LogPath}}
{{- if gt .PID 0}}

waited=0
while kill -0 {{.PID}} 2>/dev/null; do
	waited=$((waited + 1))
	if [ "$waited" -ge {{.WaitAttempts}} ]; then
		echo "$(date) process {{.PID}} still running after {{.WaitAttempts}} attempts" >>"$LOG"
		rm -f "$0"
		exit 1
	fi
	sleep 1
done
{{- end}}

moves=0
until mv -f "$SOURCE" "$TARGET" 2>>"$LOG"; do
	moves=$((moves + 1))
	if [ "$moves" -ge {{.MoveAttempts}} ]; then
		echo "$(date) could not replace $TARGET after {{.MoveAttempts}} attempts" >>"$LOG"
		echo "segunda: update failed, the previous version was kept (see $LOG)" >&2
		rm -f "$0"
		exit 1
	fi
	sleep 1
done

chmod +x "$TARGET"
rm -f "$0"
exec "$TARGET"{{range .Args}} {{sh .}}{{end}}
`))

// Render returns the relaunch script for goos.
func Render(goos string, data ScriptData) (string, error) {
	if data.WaitAttempts <= 0 {
		data.WaitAttempts = DefaultWaitAttempts
	}
	if data.MoveAttempts <= 0 {
		data.MoveAttempts = DefaultMoveAttempts
	}

	tmpl := unixScript
	if goos == "windows" {
		if strings.ContainsAny(data.CurrentPath+data.NewPath+data.LogPath, "\"%\r\n") {
			return "", fmt.Errorf("path cannot be used in a batch script: %q", data.CurrentPath)
		}
		tmpl = windowsScript
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	out := b.String()
	if goos == "windows" {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	return out, nil
}

// shellQuote wraps s in single quotes for POSIX sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// batchQuote wraps s in double quotes for cmd.exe.
func batchQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
