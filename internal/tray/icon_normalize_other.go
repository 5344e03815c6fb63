//go:build !windows

package tray

import (
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/example/lbmenu/internal/logging"
)

func platformNormalizeIcon(data []byte) []byte {
	if !isImage(data) {
		logging.Debugf("ignoring tray icon data that is not a decodable image (%d bytes)", len(data))
		return nil
	}
	return data
}
