//go:build windows

package tray

import "os/exec"

func launchPath(path string) error {
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", path).Start()
}
