//go:build !windows
// +build !windows

package launchtask

import (
	"os/exec"
	"syscall"
)

// detach starts cmd as its own session leader (setsid), so it survives
// the launcher's process group: a SIGINT delivered to the launcher's
// foreground process group (e.g. Ctrl-C in the invoking terminal) does
// not reach the spawned executable, matching spec.md §4.5's "detached
// from the launcher."
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
