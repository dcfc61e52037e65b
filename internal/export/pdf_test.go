package export

import (
	"bytes"
	"errors"
	"testing"

	"rebarvista/internal/device"
)

func TestWritePDFProducesDocument(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleSnapshot(), ""); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF: %q", buf.Bytes()[:8])
	}
}

func TestWritePDFEmbedsImage(t *testing.T) {
	t.Parallel()

	encoded, _ := tinyPNG(t)

	var plain, withImage bytes.Buffer
	if err := WritePDF(&plain, sampleSnapshot(), ""); err != nil {
		t.Fatalf("write without image: %v", err)
	}
	if err := WritePDF(&withImage, sampleSnapshot(), encoded); err != nil {
		t.Fatalf("write with image: %v", err)
	}
	if withImage.Len() <= plain.Len() {
		t.Fatalf("image report (%d bytes) not larger than plain report (%d bytes)", withImage.Len(), plain.Len())
	}
}

func TestWritePDFSkipsUndecodableImage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleSnapshot(), "!!not base64!!"); err != nil {
		t.Fatalf("bad payload should not fail the report: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("expected a PDF document")
	}
}

func TestWritePDFRejectsEmptySnapshot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WritePDF(&buf, device.Snapshot{}, ""); !errors.Is(err, ErrNoData) {
		t.Fatalf("got %v, want ErrNoData", err)
	}
}
