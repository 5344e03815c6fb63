//go:build !unix && !windows

package dispatch

import "os/exec"

func configureDetached(*exec.Cmd) {}

// Reap is a no-op on platforms without wait4.
func Reap() int {
	return 0
}
