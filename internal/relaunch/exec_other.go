//go:build !windows

package relaunch

import (
	"os"
	"os/exec"
	"syscall"
)

const defaultMode = ModeExec

// execScript replaces the current process with sh running the script.
func execScript(script string) error {
	sh, err := exec.LookPath("sh")
	if err != nil {
		sh = "/bin/sh"
	}
	return syscall.Exec(sh, []string{"sh", script}, os.Environ())
}

// spawnScript starts the script in its own session so it outlives the caller.
func spawnScript(script string) error {
	//nolint:gosec // G204: the script path is one this process just wrote
	cmd := exec.Command("/bin/sh", script)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
