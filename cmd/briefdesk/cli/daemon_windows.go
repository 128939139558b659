//go:build windows

package cli

import (
	"os"
	"os/exec"
	"syscall"
)

// detachedProcess is DETACHED_PROCESS from the Windows process creation flags.
const detachedProcess = 0x00000008

// setSysProcAttr detaches the background server from the console that
// started it.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: detachedProcess | syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// isProcessRunning reports whether pid is alive. On Windows FindProcess opens
// a process handle and fails when no process has that PID.
func isProcessRunning(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	proc.Release()
	return true
}

// stopProcess terminates the server. Windows has no SIGTERM, so in-flight
// requests are cut off; SQLite recovers its journal on the next start.
func stopProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	defer proc.Release()
	return proc.Kill()
}
