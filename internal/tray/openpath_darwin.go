//go:build darwin

package tray

import "os/exec"

func launchPath(path string) error {
	return exec.Command("open", "-t", path).Start()
}
