//go:build windows

package relaunch

import (
	"os/exec"
	"syscall"
)

const (
	defaultMode = ModeSpawn

	detachedProcess = 0x00000008
)

// execScript falls back to spawning: Windows cannot replace a process image.
func execScript(script string) error {
	return spawnScript(script)
}

// spawnScript runs the batch file detached from the current console.
func spawnScript(script string) error {
	//nolint:gosec // G204: the script path is one this process just wrote
	cmd := exec.Command("cmd.exe", "/C", script)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess,
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
