//go:build (cgo && !darwin) || windows

package tray

import "github.com/getlantern/systray"

func setTrayIcon(icon []byte) {
	systray.SetIcon(icon)
}
