package format

import (
	"fmt"
	"math"
	"regexp"
	"time"
)

// The device stamps captures with a compact local-time pattern.
var compactStamp = regexp.MustCompile(`^\d{8}-\d{6}$`)

const displayLayout = "Jan 2, 2006 15:04:05"

var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp renders a device timestamp for display. Compact stamps
// (YYYYMMDD-HHMMSS) decompose into calendar fields; other inputs get a
// best-effort generic parse. An empty input renders as "None" and anything
// unparsable passes through untouched, so this never fails.
func Timestamp(raw string) string {
	if raw == "" {
		return "None"
	}
	if compactStamp.MatchString(raw) {
		if t, err := time.ParseInLocation("20060102-150405", raw, time.Local); err == nil {
			return t.Format(displayLayout)
		}
	}
	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t.Format(displayLayout)
		}
	}
	return raw
}

// Volume renders a volume in cubic centimeters with two decimals.
func Volume(cc float64) string {
	return fmt.Sprintf("%.2f", roundCenti(cc))
}

// Dimension renders a linear measurement in centimeters with two decimals.
func Dimension(cm float64) string {
	return fmt.Sprintf("%.2f", roundCenti(cm))
}

// TotalLine renders the total-volume summary line shown under the table and
// reused verbatim by the CSV and PDF exports.
func TotalLine(totalCc float64) string {
	return fmt.Sprintf("Total Volume: %.2f cc", roundCenti(totalCc))
}

// roundCenti rounds half away from zero at the second decimal. Plain %.2f
// would render 10.005 as 10.00 because of its binary representation.
func roundCenti(v float64) float64 {
	return math.Round(v*100) / 100
}
