//go:build unix

package dispatch

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func configureDetached(cmd *exec.Cmd) {
	// a new session keeps the child alive when the launcher's terminal or
	// process group goes away
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

// Reap collects every child process that has already exited without
// blocking. It returns how many were collected. Reap is best effort and is
// not tied to any particular launch.
func Reap() int {
	reaped := 0
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil || pid <= 0 {
			return reaped
		}
		reaped++
	}
}
