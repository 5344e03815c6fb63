package tray

import (
	"fmt"
	"os"
)

// openPath hands path to the desktop's default handler. Validation is shared
// so the platform launchers stay minimal.
func openPath(path string) error {
	if path == "" {
		return fmt.Errorf("no settings file configured")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return launchPath(path)
}
