package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"rebarvista/internal/device"
	"rebarvista/internal/tuitest"
)

// stubDevice serves the device API with a fixed snapshot so the dashboard can
// be driven end to end without hardware.
func stubDevice(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/connection_status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]bool{"connected": true})
	})
	mux.HandleFunc("/api/latest_data", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, device.Snapshot{
			Connected: true,
			Timestamp: "20240115-143022",
			Segments: []device.Segment{
				{SectionID: 1, VolumeCc: 10.005, WidthCm: 2.5, LengthCm: 4, HeightCm: 1},
				{SectionID: 2, VolumeCc: 5, WidthCm: 2, LengthCm: 2.5, HeightCm: 1},
			},
			TotalVolume: 15.005,
		})
	})
	mux.HandleFunc("/api/get_config", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, device.Config{DetectionThreshold: 0.7, CameraEnabled: true})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestDashboardRendersSnapshotFromDevice(t *testing.T) {
	t.Parallel()

	server := stubDevice(t)
	binary := buildBinary(t)
	logPath := filepath.Join(t.TempDir(), "rebarvista.log")
	historyPath := filepath.Join(t.TempDir(), "history.json")

	rec, err := tuitest.Run(context.Background(), tuitest.Script{
		Command: []string{
			binary,
			"-no-alt-screen",
			"-no-push",
			"-device", server.URL,
			"-log", logPath,
			"-history", historyPath,
		},
		Dir:  moduleDir(t),
		Cols: 110,
		Rows: 34,
		Keys: []tuitest.Keystroke{
			{Wait: 2 * time.Second},
			tuitest.Press(0, "?"),
			{Wait: time.Second},
			{Bytes: tuitest.KeyCtrlC},
		},
		Deadline:       10 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run dashboard: %v", err)
	}

	for _, want := range []string{
		"RebarVista",
		"Connected",
		"Measured Segments",
		"Total Volume: 15.01 cc",
		"hides this overlay",
	} {
		if !rec.Contains(want) {
			frame, _ := rec.FinalFrame()
			t.Fatalf("no frame contains %q\n---- final frame ----\n%s", want, frame.Plain)
		}
	}
}

func TestDashboardShowsDisconnectedWithoutDevice(t *testing.T) {
	t.Parallel()

	binary := buildBinary(t)
	logPath := filepath.Join(t.TempDir(), "rebarvista.log")

	rec, err := tuitest.Run(context.Background(), tuitest.Script{
		Command: []string{
			binary,
			"-no-alt-screen",
			"-no-push",
			"-device", "http://127.0.0.1:1",
			"-log", logPath,
		},
		Dir:  moduleDir(t),
		Cols: 110,
		Rows: 34,
		Keys: []tuitest.Keystroke{
			{Wait: 2 * time.Second},
			{Bytes: tuitest.KeyCtrlC},
		},
		Deadline:       10 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run dashboard: %v", err)
	}

	if !rec.Contains("Disconnected") && !rec.Contains("Connecting") {
		frame, _ := rec.FinalFrame()
		t.Fatalf("expected an offline status, final frame:\n%s", frame.Plain)
	}
	if !rec.Contains("No capture data") {
		t.Fatal("offline dashboard should show the empty-display hint")
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T) string {
	t.Helper()
	name := "rebarvista-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = moduleDir(t)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build dashboard: %v\n%s", err, output)
	}
	return binPath
}
