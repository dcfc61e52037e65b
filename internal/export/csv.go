// Package export writes the currently displayed capture out as CSV, PDF, or
// a raw image file. Every writer formats values exactly as the view renders
// them, so exported artifacts always match the screen.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"rebarvista/internal/device"
	"rebarvista/internal/format"
)

// ErrNoData is returned when an export is requested with no snapshot on
// screen.
var ErrNoData = errors.New("no capture data to export")

var csvHeader = []string{"Section", "Width (cm)", "Length (cm)", "Height (cm)", "Volume (cc)"}

// WriteCSV writes the segment table, one row per segment, followed by a
// trailing total row whose last field matches the displayed total string.
func WriteCSV(w io.Writer, snap device.Snapshot) error {
	if len(snap.Segments) == 0 {
		return ErrNoData
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, seg := range snap.Segments {
		row := []string{
			strconv.Itoa(seg.SectionID),
			format.Dimension(seg.WidthCm),
			format.Dimension(seg.LengthCm),
			format.Dimension(seg.HeightCm),
			format.Volume(seg.VolumeCc),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	total := []string{"Total", "", "", "", fmt.Sprintf("%s cc", format.Volume(snap.TotalVolume))}
	if err := cw.Write(total); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the CSV export to path.
func SaveCSV(path string, snap device.Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(file, snap); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
