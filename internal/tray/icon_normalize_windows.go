//go:build windows

package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/example/lbmenu/internal/logging"
)

// icoHeader and icoEntry mirror the on-disk ICONDIR and ICONDIRENTRY records.
type icoHeader struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

type icoEntry struct {
	Width       uint8
	Height      uint8
	Colors      uint8
	Reserved    uint8
	Planes      uint16
	BitCount    uint16
	BytesInRes  uint32
	ImageOffset uint32
}

// platformNormalizeIcon converts any decodable image into a single-entry ICO
// container, which is the only format the Windows tray accepts.
func platformNormalizeIcon(data []byte) []byte {
	if isICO(data) {
		return data
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logging.Debugf("failed to decode tray icon image: %v", err)
		return nil
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		logging.Debugf("tray icon image has invalid bounds: %dx%d", bounds.Dx(), bounds.Dy())
		return nil
	}

	pngData := data
	if format != "png" {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			logging.Debugf("failed to convert tray icon to png: %v", err)
			return nil
		}
		pngData = buf.Bytes()
	}

	icoData, err := wrapPNGAsICO(pngData, bounds.Dx(), bounds.Dy())
	if err != nil {
		logging.Debugf("failed to wrap tray icon PNG as ico: %v", err)
		return nil
	}
	logging.Debugf("normalized %s icon (%dx%d) to ico container", format, bounds.Dx(), bounds.Dy())
	return icoData
}

func wrapPNGAsICO(pngData []byte, width, height int) ([]byte, error) {
	header := icoHeader{Type: 1, Count: 1}
	entry := icoEntry{
		Width:      icoDimension(width),
		Height:     icoDimension(height),
		Planes:     1,
		BitCount:   32,
		BytesInRes: uint32(len(pngData)),
	}
	entry.ImageOffset = uint32(binary.Size(header) + binary.Size(entry))

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, entry); err != nil {
		return nil, err
	}
	buf.Write(pngData)
	return buf.Bytes(), nil
}

// icoDimension encodes 256 and above as 0, as the format requires.
func icoDimension(v int) uint8 {
	if v <= 0 || v >= 256 {
		return 0
	}
	return uint8(v)
}

func isICO(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x00 && data[1] == 0x00 && data[2] == 0x01 && data[3] == 0x00
}
