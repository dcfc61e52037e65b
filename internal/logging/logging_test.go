package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenWritesJSONRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dash.log")
	log, closeLog := Open(path, "debug")
	log.Info("device connected", "url", "http://localhost:8000")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, raw)
	}
	if record["msg"] != "device connected" || record["url"] != "http://localhost:8000" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestOpenRespectsLevel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dash.log")
	log, closeLog := Open(path, "warn")
	log.Info("suppressed")
	log.Warn("kept")
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		t.Fatalf("expected exactly one JSON line, got:\n%s", raw)
	}
	if record["msg"] != "kept" {
		t.Fatalf("info record should be suppressed at warn level: %v", record)
	}
}

func TestOpenUnwritablePathDegrades(t *testing.T) {
	t.Parallel()

	log, closeLog := Open(filepath.Join(t.TempDir(), "missing", "deep", "dash.log"), "info")
	if log == nil {
		t.Fatal("logger should never be nil")
	}
	log.Info("dropped silently")
	if err := closeLog(); err != nil {
		t.Fatalf("close on degraded logger: %v", err)
	}
}
