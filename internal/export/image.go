package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"os"
	"strings"

	_ "image/jpeg"
	_ "image/png"
)

// ImageInfo describes a decoded payload for display.
type ImageInfo struct {
	Width  int
	Height int
	Format string
	Bytes  int
}

// DecodeImage turns the device's encoded payload into raw image bytes. A
// data-URI prefix, if present, is stripped first.
func DecodeImage(payload string) ([]byte, error) {
	if payload == "" {
		return nil, ErrNoData
	}
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, errors.New("image payload is not valid base64")
	}
	return raw, nil
}

// InspectImage reports the dimensions and encoding of a payload without fully
// decoding the pixels.
func InspectImage(payload string) (ImageInfo, error) {
	raw, err := DecodeImage(payload)
	if err != nil {
		return ImageInfo{}, err
	}
	cfg, name, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return ImageInfo{Bytes: len(raw)}, nil
	}
	return ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: name, Bytes: len(raw)}, nil
}

// SaveImage re-emits the currently displayed encoded image as a file.
func SaveImage(path, payload string) error {
	raw, err := DecodeImage(payload)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
