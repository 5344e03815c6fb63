//go:build darwin && cgo

package tray

import "github.com/getlantern/systray"

// setTrayIcon uses a template icon so macOS tints it for light and dark bars.
func setTrayIcon(icon []byte) {
	systray.SetTemplateIcon(icon, icon)
}
