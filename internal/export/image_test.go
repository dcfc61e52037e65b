package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// tinyPNG returns a base64-encoded 3x2 PNG for payload tests.
func tinyPNG(t *testing.T) (string, []byte) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), buf.Bytes()
}

func TestDecodeImageStripsDataURIPrefix(t *testing.T) {
	t.Parallel()

	encoded, raw := tinyPNG(t)
	for _, payload := range []string{encoded, "data:image/png;base64," + encoded} {
		got, err := DecodeImage(payload)
		if err != nil {
			t.Fatalf("decode %q...: %v", payload[:20], err)
		}
		if !bytes.Equal(got, raw) {
			t.Fatal("decoded bytes do not match the original")
		}
	}
}

func TestDecodeImageErrors(t *testing.T) {
	t.Parallel()

	if _, err := DecodeImage(""); !errors.Is(err, ErrNoData) {
		t.Fatalf("empty payload: got %v, want ErrNoData", err)
	}
	if _, err := DecodeImage("!!not base64!!"); err == nil {
		t.Fatal("expected error for malformed base64")
	}
}

func TestInspectImageReportsDimensions(t *testing.T) {
	t.Parallel()

	encoded, raw := tinyPNG(t)
	info, err := InspectImage(encoded)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if info.Width != 3 || info.Height != 2 || info.Format != "png" || info.Bytes != len(raw) {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestInspectImageToleratesUnknownFormat(t *testing.T) {
	t.Parallel()

	payload := base64.StdEncoding.EncodeToString([]byte("plainly not an image"))
	info, err := InspectImage(payload)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if info.Width != 0 || info.Format != "" || info.Bytes == 0 {
		t.Fatalf("unexpected info for undecodable payload: %+v", info)
	}
}

func TestSaveImageWritesRawBytes(t *testing.T) {
	t.Parallel()

	encoded, raw := tinyPNG(t)
	path := filepath.Join(t.TempDir(), "capture.png")
	if err := SaveImage(path, encoded); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatal("file contents differ from decoded payload")
	}
}
