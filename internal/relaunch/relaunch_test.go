package relaunch

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	apperrors "segunda/internal/errors"
)

func TestRenderWindowsScript(t *testing.T) {
	out, err := Render("windows", ScriptData{
		NewPath:      `C:\Users\ana\AppData\Local\Temp\segunda-update-1.exe`,
		CurrentPath:  `C:\Program Files\Segunda\segunda.exe`,
		ImageName:    "segunda.exe",
		WaitAttempts: 12,
		MoveAttempts: 3,
		LogPath:      `C:\Program Files\Segunda\segunda.update.log`,
		Args:         []string{"--theme", `say "hi"`},
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	for _, want := range []string{
		"@echo off\r\n",
		`set "TARGET=C:\Program Files\Segunda\segunda.exe"`,
		`tasklist /FI "IMAGENAME eq segunda.exe"`,
		"if %WAITED% GEQ 12 goto waitfailed",
		`move /Y "%SOURCE%" "%TARGET%"`,
		"if %MOVES% GEQ 3 goto movefailed",
		"msg * ",
		`start "" "%TARGET%" "--theme" "say ""hi"""`,
		`del "%~f0"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("windows script missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(strings.ReplaceAll(out, "\r\n", ""), "\n") {
		t.Error("windows script should use CRLF line endings")
	}
}

func TestRenderWindowsRejectsUnsafePaths(t *testing.T) {
	_, err := Render("windows", ScriptData{
		NewPath:     `C:\tmp\new.exe`,
		CurrentPath: `C:\100%\segunda.exe`,
	})
	if err == nil {
		t.Fatal("expected error for path containing %")
	}
}

func TestRenderUnixScript(t *testing.T) {
	out, err := Render("linux", ScriptData{
		NewPath:      "/tmp/segunda-update-1",
		CurrentPath:  "/home/ana/bin/it's segunda",
		PID:          4242,
		WaitAttempts: 7,
		MoveAttempts: 2,
		LogPath:      "/home/ana/bin/segunda.update.log",
		Args:         []string{"--debug"},
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	for _, want := range []string{
		"#!/bin/sh\n",
		`TARGET='/home/ana/bin/it'\''s segunda'`,
		"while kill -0 4242 2>/dev/null; do",
		`if [ "$waited" -ge 7 ]; then`,
		`until mv -f "$SOURCE" "$TARGET"`,
		`if [ "$moves" -ge 2 ]; then`,
		`chmod +x "$TARGET"`,
		`exec "$TARGET" '--debug'`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("unix script missing %q:\n%s", want, out)
		}
	}
}

func TestRenderUnixScriptSkipsWaitWithoutPID(t *testing.T) {
	out, err := Render("darwin", ScriptData{NewPath: "/tmp/new", CurrentPath: "/usr/local/bin/segunda"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if strings.Contains(out, "kill -0") {
		t.Errorf("script without PID should not wait:\n%s", out)
	}
	if !strings.Contains(out, `-ge 5 ]`) {
		t.Errorf("expected default move attempts:\n%s", out)
	}
}

func TestSideLogPath(t *testing.T) {
	tests := map[string]string{
		filepath.Join("opt", "segunda"):     filepath.Join("opt", "segunda.update.log"),
		filepath.Join("opt", "segunda.exe"): filepath.Join("opt", "segunda.update.log"),
		filepath.Join("opt", "Segunda.EXE"): filepath.Join("opt", "Segunda.update.log"),
	}
	for in, want := range tests {
		if got := SideLogPath(in); got != want {
			t.Errorf("SideLogPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRelaunchAfterReplaceSpawnsScript(t *testing.T) {
	dir := t.TempDir()
	newPath := filepath.Join(dir, "new")
	if err := os.WriteFile(newPath, []byte("v2"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var started string
	var body []byte
	h := NewScriptHelper(WithMode(ModeSpawn), WithTempDir(dir), WithWaitAttempts(4))
	h.spawn = func(script string) error {
		started = script
		body, _ = os.ReadFile(script)
		return nil
	}
	h.exec = func(string) error {
		t.Fatal("exec should not be used in spawn mode")
		return nil
	}

	if err := h.RelaunchAfterReplace(newPath, filepath.Join(dir, "segunda")); err != nil {
		t.Fatalf("RelaunchAfterReplace() error: %v", err)
	}
	if started == "" {
		t.Fatal("script was not started")
	}
	if filepath.Dir(started) != dir {
		t.Errorf("script %q not written to temp dir", started)
	}
	if runtime.GOOS != "windows" && !strings.Contains(string(body), "kill -0") {
		t.Errorf("spawn mode should wait for the old process:\n%s", body)
	}
}

func TestRelaunchAfterReplaceExecSkipsWait(t *testing.T) {
	dir := t.TempDir()
	newPath := filepath.Join(dir, "new")
	if err := os.WriteFile(newPath, []byte("v2"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var body []byte
	h := NewScriptHelper(WithMode(ModeExec), WithTempDir(dir))
	h.goos = "linux"
	h.exec = func(script string) error {
		body, _ = os.ReadFile(script)
		return nil
	}

	if err := h.RelaunchAfterReplace(newPath, filepath.Join(dir, "segunda")); err != nil {
		t.Fatalf("RelaunchAfterReplace() error: %v", err)
	}
	if strings.Contains(string(body), "kill -0") {
		t.Errorf("exec mode should not wait for itself:\n%s", body)
	}
}

func TestRelaunchAfterReplaceErrors(t *testing.T) {
	dir := t.TempDir()
	h := NewScriptHelper(WithTempDir(dir))

	err := h.RelaunchAfterReplace(filepath.Join(dir, "missing"), filepath.Join(dir, "segunda"))
	if !apperrors.IsCode(err, apperrors.CodeReplaceFailed) {
		t.Errorf("missing download: got %v", err)
	}

	newPath := filepath.Join(dir, "new")
	if err := os.WriteFile(newPath, []byte("v2"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := h.RelaunchAfterReplace(newPath, " "); !apperrors.IsCode(err, apperrors.CodeReplaceFailed) {
		t.Errorf("empty target: got %v", err)
	}

	h.spawn = func(string) error { return errors.New("boom") }
	h.exec = h.spawn
	err = h.RelaunchAfterReplace(newPath, filepath.Join(dir, "segunda"))
	if !apperrors.IsCode(err, apperrors.CodeReplaceFailed) {
		t.Fatalf("launch failure: got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "segunda-relaunch-") {
			t.Errorf("script %s left behind after launch failure", e.Name())
		}
	}
}

func TestUnixScriptReplacesAndRelaunches(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("sh script")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := filepath.Join(t.TempDir(), "with space")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	target := filepath.Join(dir, "segunda")
	if err := os.WriteFile(target, []byte("#!/bin/sh\nexit 3\n"), 0o755); err != nil {
		t.Fatalf("write target: %v", err)
	}
	newBuild := "#!/bin/sh\necho relaunched \"$1\" > \"$2\"\n"
	newPath := filepath.Join(dir, "download")
	if err := os.WriteFile(newPath, []byte(newBuild), 0o600); err != nil {
		t.Fatalf("write download: %v", err)
	}
	marker := filepath.Join(dir, "marker")

	var script string
	h := NewScriptHelper(
		WithMode(ModeExec),
		WithTempDir(dir),
		WithArgs([]string{"it's ok", marker}),
	)
	h.exec = func(path string) error {
		script = path
		out, err := exec.Command("sh", path).CombinedOutput()
		if err != nil {
			t.Logf("script output: %s", out)
		}
		return err
	}

	if err := h.RelaunchAfterReplace(newPath, target); err != nil {
		t.Fatalf("RelaunchAfterReplace() error: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil || string(got) != newBuild {
		t.Fatalf("target not replaced: %q, %v", got, err)
	}
	if _, err := os.Stat(newPath); !os.IsNotExist(err) {
		t.Error("download should have been moved")
	}
	if _, err := os.Stat(script); !os.IsNotExist(err) {
		t.Error("script should remove itself")
	}
	out, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("relaunched build did not run: %v", err)
	}
	if strings.TrimSpace(string(out)) != "relaunched it's ok" {
		t.Errorf("marker = %q", out)
	}
}

func TestCurrentExecutable(t *testing.T) {
	exe, err := CurrentExecutable()
	if err != nil {
		t.Fatalf("CurrentExecutable() error: %v", err)
	}
	if !filepath.IsAbs(exe) {
		t.Errorf("expected absolute path, got %q", exe)
	}
}

func TestModeString(t *testing.T) {
	if ModeSpawn.String() != "spawn" || ModeExec.String() != "exec" {
		t.Errorf("unexpected mode names: %s %s", ModeSpawn, ModeExec)
	}
}
