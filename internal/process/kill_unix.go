//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort: the caller still waits on or kills the leader itself.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// ConfigureGroup starts cmd as the leader of a new process group and makes
// context cancellation kill the whole group. Renderers such as mmdc spawn a
// headless browser that would otherwise outlive them.
func ConfigureGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		KillProcessGroup(cmd.Process.Pid)
		return nil
	}
}
