// Package relaunch replaces the running executable with a downloaded build
// and starts it again.
//
// The running process cannot overwrite its own image on every platform, so
// the work is handed to a short-lived generated script: a batch file on
// Windows, a POSIX sh script elsewhere. The script waits for the current
// process to exit, moves the new file over the old one with bounded
// retries, and relaunches it.
package relaunch

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"segunda/internal/debug"
	apperrors "segunda/internal/errors"
)

// Default retry policy for the generated script.
const (
	DefaultWaitAttempts = 30
	DefaultMoveAttempts = 5
)

// Helper replaces currentPath with newPath and relaunches it.
type Helper interface {
	RelaunchAfterReplace(newPath, currentPath string) error
}

// Mode selects how the generated script is started.
type Mode int

const (
	// ModeSpawn starts the script as a detached child; the caller must exit
	// promptly so the script can replace the executable.
	ModeSpawn Mode = iota
	// ModeExec replaces the current process image with the script, keeping
	// the PID and the controlling terminal. It does not return on success.
	ModeExec
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeExec:
		return "exec"
	default:
		return "spawn"
	}
}

// ScriptHelper is the default Helper.
type ScriptHelper struct {
	goos         string
	mode         Mode
	waitAttempts int
	moveAttempts int
	tempDir      string
	pid          int
	args         []string

	spawn func(script string) error
	exec  func(script string) error
}

// Option configures a ScriptHelper.
type Option func(*ScriptHelper)

// WithMode overrides the platform default launch mode.
func WithMode(m Mode) Option {
	return func(h *ScriptHelper) {
		h.mode = m
	}
}

// WithWaitAttempts sets how many one-second polls the script makes for the
// old process to exit.
func WithWaitAttempts(n int) Option {
	return func(h *ScriptHelper) {
		if n > 0 {
			h.waitAttempts = n
		}
	}
}

// WithMoveAttempts sets how often the script retries the file move.
func WithMoveAttempts(n int) Option {
	return func(h *ScriptHelper) {
		if n > 0 {
			h.moveAttempts = n
		}
	}
}

// WithTempDir sets where the script is written.
func WithTempDir(dir string) Option {
	return func(h *ScriptHelper) {
		h.tempDir = dir
	}
}

// WithArgs passes arguments to the relaunched executable.
func WithArgs(args []string) Option {
	return func(h *ScriptHelper) {
		h.args = append([]string(nil), args...)
	}
}

// NewScriptHelper creates a helper for the running platform.
func NewScriptHelper(opts ...Option) *ScriptHelper {
	h := &ScriptHelper{
		goos:         runtime.GOOS,
		mode:         defaultMode,
		waitAttempts: DefaultWaitAttempts,
		moveAttempts: DefaultMoveAttempts,
		pid:          os.Getpid(),
		spawn:        spawnScript,
		exec:         execScript,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mode reports the launch mode in effect.
func (h *ScriptHelper) Mode() Mode {
	return h.mode
}

// RelaunchAfterReplace writes the platform script and starts it. In
// ModeSpawn it returns once the script is running and the caller should
// exit; in ModeExec it only returns on failure.
func (h *ScriptHelper) RelaunchAfterReplace(newPath, currentPath string) error {
	if strings.TrimSpace(currentPath) == "" {
		return apperrors.New(apperrors.CodeReplaceFailed, "current executable path is unknown", nil)
	}
	if _, err := os.Stat(newPath); err != nil {
		return apperrors.New(apperrors.CodeReplaceFailed, "downloaded update is missing", err)
	}

	data := h.scriptData(newPath, currentPath)
	script, err := h.writeScript(data)
	if err != nil {
		return err
	}
	debug.Logf("relaunch: %s mode, script %s, target %s", h.mode, script, currentPath)

	launch := h.spawn
	if h.mode == ModeExec {
		launch = h.exec
	}
	if err := launch(script); err != nil {
		_ = os.Remove(script)
		return apperrors.New(apperrors.CodeReplaceFailed, "", fmt.Errorf("start relaunch script: %w", err))
	}
	return nil
}

func (h *ScriptHelper) scriptData(newPath, currentPath string) ScriptData {
	pid := h.pid
	// After exec the old image is gone, so there is nothing to wait for.
	if h.mode == ModeExec {
		pid = 0
	}
	return ScriptData{
		NewPath:      newPath,
		CurrentPath:  currentPath,
		ImageName:    filepath.Base(currentPath),
		PID:          pid,
		WaitAttempts: h.waitAttempts,
		MoveAttempts: h.moveAttempts,
		LogPath:      SideLogPath(currentPath),
		Args:         h.args,
	}
}

func (h *ScriptHelper) writeScript(data ScriptData) (string, error) {
	body, err := Render(h.goos, data)
	if err != nil {
		return "", apperrors.New(apperrors.CodeReplaceFailed, "", err)
	}

	f, err := os.CreateTemp(h.tempDir, "segunda-relaunch-*"+scriptExt(h.goos))
	if err != nil {
		return "", apperrors.New(apperrors.CodePermissionDenied, "cannot create relaunch script", err)
	}
	path := f.Name()
	if _, err := f.WriteString(body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", apperrors.New(apperrors.CodePermissionDenied, "cannot write relaunch script", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", apperrors.New(apperrors.CodePermissionDenied, "cannot write relaunch script", err)
	}
	if h.goos != "windows" {
		//nolint:gosec // G302: the script must be executable by its owner
		if err := os.Chmod(path, 0700); err != nil {
			_ = os.Remove(path)
			return "", apperrors.New(apperrors.CodePermissionDenied, "cannot mark relaunch script executable", err)
		}
	}
	return path, nil
}

// SideLogPath returns the file next to the executable that the script
// appends failures to, e.g. segunda.update.log for segunda.exe.
func SideLogPath(exePath string) string {
	dir := filepath.Dir(exePath)
	base := filepath.Base(exePath)
	if strings.EqualFold(filepath.Ext(base), ".exe") {
		base = base[:len(base)-len(".exe")]
	}
	return filepath.Join(dir, base+".update.log")
}

// CurrentExecutable returns the resolved path of the running binary.
func CurrentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", apperrors.New(apperrors.CodeReplaceFailed, "cannot locate running executable", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}

func scriptExt(goos string) string {
	if goos == "windows" {
		return ".bat"
	}
	return ".sh"
}
