package module

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

func acceptedType(contentType string, accepted []string) bool {
	for _, t := range accepted {
		if t == contentType {
			return true
		}
	}
	return false
}

// probeSize natural pixel size of an encoded image, zero when it can't be decoded
func probeSize(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
