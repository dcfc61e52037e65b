package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"rebarvista/internal/device"
)

func TestSettingsFormParseValidation(t *testing.T) {
	cases := []struct {
		name      string
		threshold string
		index     string
		wantErr   bool
	}{
		{name: "valid", threshold: "0.7", index: "0", wantErr: false},
		{name: "upper bound inclusive", threshold: "1", index: "2", wantErr: false},
		{name: "zero threshold", threshold: "0", index: "0", wantErr: true},
		{name: "threshold above one", threshold: "1.5", index: "0", wantErr: true},
		{name: "threshold not numeric", threshold: "high", index: "0", wantErr: true},
		{name: "negative index", threshold: "0.5", index: "-1", wantErr: true},
		{name: "index not numeric", threshold: "0.5", index: "usb", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := newSettingsForm()
			form.threshold.SetValue(tc.threshold)
			form.cameraIndex.SetValue(tc.index)
			_, err := form.parse()
			if tc.wantErr && err == nil {
				t.Fatal("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSettingsPopulateFromDeviceConfig(t *testing.T) {
	form := newSettingsForm()
	form.populate(device.Config{DetectionThreshold: 0.85, CameraEnabled: true, ExternalCameraIndex: 2})

	cfg, err := form.parse()
	if err != nil {
		t.Fatalf("parse after populate: %v", err)
	}
	if cfg.DetectionThreshold != 0.85 || !cfg.CameraEnabled || cfg.ExternalCameraIndex != 2 {
		t.Fatalf("round trip mismatch: %+v", cfg)
	}
	if form.focus != fieldThreshold || !form.threshold.Focused() {
		t.Fatal("populate should focus the first field")
	}
}

func TestSettingsTabCyclesFocus(t *testing.T) {
	m := newTestModel(t, &fakeDevice{})
	m.settingsOpen = true
	m.form.populate(device.Config{DetectionThreshold: 0.7})

	order := []int{fieldCameraEnabled, fieldCameraIndex, fieldThreshold}
	for _, want := range order {
		m.handleSettingsKey(tea.KeyMsg{Type: tea.KeyTab})
		if m.form.focus != want {
			t.Fatalf("focus %d, want %d", m.form.focus, want)
		}
	}
	m.handleSettingsKey(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.form.focus != fieldCameraIndex {
		t.Fatalf("shift+tab focus %d, want %d", m.form.focus, fieldCameraIndex)
	}
}

func TestSettingsSpaceTogglesCamera(t *testing.T) {
	m := newTestModel(t, &fakeDevice{})
	m.settingsOpen = true
	m.form.populate(device.Config{DetectionThreshold: 0.7, CameraEnabled: true})
	m.form.setFocus(fieldCameraEnabled)

	m.handleSettingsKey(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if m.form.cameraEnabled {
		t.Fatal("space should toggle the camera flag off")
	}
	m.handleSettingsKey(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.form.cameraEnabled {
		t.Fatal("space should toggle the camera flag back on")
	}
}

func TestSubmitInvalidSettingsWarnsWithoutSaving(t *testing.T) {
	m := newTestModel(t, &fakeDevice{})
	m.settingsOpen = true
	m.form.populate(device.Config{DetectionThreshold: 0.7})
	m.form.threshold.SetValue("2.0")

	m.submitSettings()
	if m.form.saving {
		t.Fatal("invalid form must not enter the saving state")
	}
	if !m.settingsOpen {
		t.Fatal("panel should stay open so the value can be corrected")
	}
	if len(m.alerts.items) != 1 || m.alerts.items[0].Severity != severityWarning {
		t.Fatalf("expected one warning alert, got %+v", m.alerts.items)
	}
}

func TestConfigLoadFailureClosesPanel(t *testing.T) {
	m := newTestModel(t, &fakeDevice{})
	m.settingsOpen = true
	m.form.loading = true

	m.handleConfigLoaded(configLoadedMsg{err: errors.New("unreachable")})
	if m.settingsOpen {
		t.Fatal("load failure should close the panel")
	}
	if m.form.loading {
		t.Fatal("loading flag should clear")
	}
	if len(m.alerts.items) != 1 || m.alerts.items[0].Severity != severityDanger {
		t.Fatalf("expected one danger alert, got %+v", m.alerts.items)
	}
}

func TestConfigSavedClosesPanelOnSuccess(t *testing.T) {
	m := newTestModel(t, &fakeDevice{})
	m.settingsOpen = true
	m.form.saving = true

	m.handleConfigSaved(configSavedMsg{})
	if m.settingsOpen {
		t.Fatal("successful save should close the panel")
	}
	if len(m.alerts.items) != 1 || m.alerts.items[0].Severity != severitySuccess {
		t.Fatalf("expected one success alert, got %+v", m.alerts.items)
	}

	m.settingsOpen = true
	m.form.saving = true
	m.handleConfigSaved(configSavedMsg{err: errors.New("rejected")})
	if !m.settingsOpen {
		t.Fatal("failed save should keep the panel open")
	}
}
