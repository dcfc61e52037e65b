package export

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/go-pdf/fpdf"

	"rebarvista/internal/device"
	"rebarvista/internal/format"
)

var pdfColumnWidths = []float64{30, 35, 35, 35, 40}

// WritePDF renders a titled report with the segment table and, when a payload
// is present, the capture image embedded below it.
func WritePDF(w io.Writer, snap device.Snapshot, imagePayload string) error {
	if len(snap.Segments) == 0 {
		return ErrNoData
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, "RebarVista Capture Report", "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 8, fmt.Sprintf("Capture time: %s", format.Timestamp(snap.Timestamp)), "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 10)
	for i, title := range csvHeader {
		doc.CellFormat(pdfColumnWidths[i], 8, title, "1", 0, "C", false, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	for _, seg := range snap.Segments {
		cells := []string{
			fmt.Sprintf("%d", seg.SectionID),
			format.Dimension(seg.WidthCm),
			format.Dimension(seg.LengthCm),
			format.Dimension(seg.HeightCm),
			format.Volume(seg.VolumeCc),
		}
		for i, cell := range cells {
			doc.CellFormat(pdfColumnWidths[i], 7, cell, "1", 0, "C", false, 0, "")
		}
		doc.Ln(-1)
	}

	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(135, 7, "Total", "1", 0, "R", false, 0, "")
	doc.CellFormat(40, 7, fmt.Sprintf("%s cc", format.Volume(snap.TotalVolume)), "1", 1, "C", false, 0, "")

	if imagePayload != "" {
		if raw, err := DecodeImage(imagePayload); err == nil {
			if kind, ok := pdfImageType(raw); ok {
				doc.Ln(6)
				opts := fpdf.ImageOptions{ImageType: kind}
				doc.RegisterImageOptionsReader("capture", opts, bytes.NewReader(raw))
				doc.ImageOptions("capture", 15, doc.GetY(), 175, 0, true, opts, 0, "")
			}
		}
	}

	return doc.Output(w)
}

// SavePDF writes the PDF report to path.
func SavePDF(path string, snap device.Snapshot, imagePayload string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePDF(file, snap, imagePayload); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// pdfImageType maps the sniffed image format onto fpdf's type names. Formats
// fpdf cannot embed are skipped rather than failing the whole report.
func pdfImageType(raw []byte) (string, bool) {
	_, name, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", false
	}
	switch name {
	case "jpeg":
		return "JPG", true
	case "png":
		return "PNG", true
	default:
		return "", false
	}
}
