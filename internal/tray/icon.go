package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"

	"github.com/example/lbmenu/internal/logging"
)

const defaultIconSize = 32

var (
	defaultIconOnce sync.Once
	defaultIconData []byte
)

// defaultIcon draws a filled disc used when the settings define no tray icon.
func defaultIcon() []byte {
	defaultIconOnce.Do(func() {
		img := image.NewNRGBA(image.Rect(0, 0, defaultIconSize, defaultIconSize))
		fill := color.NRGBA{R: 0x2d, G: 0x7d, B: 0xd2, A: 0xff}
		center := float64(defaultIconSize-1) / 2
		radius := float64(defaultIconSize)/2 - 1
		for y := 0; y < defaultIconSize; y++ {
			for x := 0; x < defaultIconSize; x++ {
				dx, dy := float64(x)-center, float64(y)-center
				if dx*dx+dy*dy <= radius*radius {
					img.SetNRGBA(x, y, fill)
				}
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			logging.Debugf("failed to encode default tray icon: %v", err)
			return
		}
		defaultIconData = buf.Bytes()
	})
	return cloneIcon(defaultIconData)
}

func cloneIcon(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp
}

// loadIcon reads and normalizes the icon at path. It returns nil when the
// file is missing or not a usable image.
func loadIcon(path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Debugf("tray icon %s unavailable: %v", path, err)
		return nil
	}
	normalized := platformNormalizeIcon(data)
	if len(normalized) == 0 {
		return nil
	}
	return cloneIcon(normalized)
}

// trayIcon returns the icon for the tray itself, falling back to the default.
func trayIcon(path string) []byte {
	if icon := loadIcon(path); len(icon) > 0 {
		return icon
	}
	return platformNormalizeIcon(defaultIcon())
}

// iconCache memoizes icon loads during one render.
type iconCache map[string][]byte

func (c iconCache) get(path string) []byte {
	if path == "" {
		return nil
	}
	if data, ok := c[path]; ok {
		return data
	}
	data := loadIcon(path)
	c[path] = data
	return data
}

func isImage(data []byte) bool {
	_, _, err := image.DecodeConfig(bytes.NewReader(data))
	return err == nil
}
