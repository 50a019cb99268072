//go:build windows
// +build windows

package launchtask

import (
	"os/exec"
	"syscall"
)

// detach starts cmd in its own process group, detached from the
// launcher's console, so closing the launcher (or a console Ctrl-C,
// which Windows delivers to the whole process group) doesn't take the
// spawned executable down with it, matching spec.md §4.5's "detached
// from the launcher."
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | syscall.DETACHED_PROCESS,
	}
}
