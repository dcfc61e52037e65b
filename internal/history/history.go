// Package history keeps a local append-only record of every capture snapshot
// the dashboard has applied, mirroring the results directory the device
// itself maintains.
package history

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"rebarvista/internal/device"
)

// Entry is one recorded capture.
type Entry struct {
	RecordedAt  time.Time        `json:"recordedAt"`
	Timestamp   string           `json:"timestamp"`
	Segments    []device.Segment `json:"segments"`
	TotalVolume float64          `json:"totalVolume"`
	HadImage    bool             `json:"hadImage"`
}

// Append records a capture at the end of the history file, creating the file
// (and its directory) if necessary.
func Append(path string, entry Entry) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	entries, err := Load(path)
	if err != nil {
		return err
	}
	// Refreshes of the same capture (manual refresh, reconnect) are not new
	// history.
	if entry.Timestamp != "" && len(entries) > 0 && entries[len(entries)-1].Timestamp == entry.Timestamp {
		return nil
	}
	entries = append(entries, entry)
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads the history file. A missing file yields an empty history; a
// corrupt file is treated as empty rather than blocking new captures.
func Load(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil
	}
	return entries, nil
}

// Recent returns up to limit entries, newest first.
func Recent(entries []Entry, limit int) []Entry {
	if limit <= 0 || len(entries) == 0 {
		return nil
	}
	if limit > len(entries) {
		limit = len(entries)
	}
	out := make([]Entry, 0, limit)
	for i := len(entries) - 1; i >= len(entries)-limit; i-- {
		out = append(out, entries[i])
	}
	return out
}
