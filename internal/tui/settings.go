package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"rebarvista/internal/device"
)

const (
	fieldThreshold = iota
	fieldCameraEnabled
	fieldCameraIndex
	fieldCount
)

// settingsForm is the edit copy of the device configuration. Nothing reaches
// the device until the form is submitted.
type settingsForm struct {
	threshold     textinput.Model
	cameraIndex   textinput.Model
	cameraEnabled bool
	focus         int
	loading       bool
	saving        bool
}

func newSettingsForm() settingsForm {
	threshold := textinput.New()
	threshold.Placeholder = "0.7"
	threshold.CharLimit = 8
	threshold.Width = 10

	cameraIndex := textinput.New()
	cameraIndex.Placeholder = "0"
	cameraIndex.CharLimit = 3
	cameraIndex.Width = 10

	return settingsForm{threshold: threshold, cameraIndex: cameraIndex}
}

func (f *settingsForm) populate(cfg device.Config) {
	f.threshold.SetValue(strconv.FormatFloat(cfg.DetectionThreshold, 'f', -1, 64))
	f.cameraIndex.SetValue(strconv.Itoa(cfg.ExternalCameraIndex))
	f.cameraEnabled = cfg.CameraEnabled
	f.focus = fieldThreshold
	f.threshold.Focus()
	f.cameraIndex.Blur()
}

func (f *settingsForm) setFocus(field int) {
	f.focus = field
	if field == fieldThreshold {
		f.threshold.Focus()
	} else {
		f.threshold.Blur()
	}
	if field == fieldCameraIndex {
		f.cameraIndex.Focus()
	} else {
		f.cameraIndex.Blur()
	}
}

// parse validates the edit copy into a submittable config.
func (f *settingsForm) parse() (device.Config, error) {
	threshold, err := strconv.ParseFloat(f.threshold.Value(), 64)
	if err != nil || threshold <= 0 || threshold > 1 {
		return device.Config{}, fmt.Errorf("detection threshold must be a number between 0 and 1")
	}
	index, err := strconv.Atoi(f.cameraIndex.Value())
	if err != nil || index < 0 {
		return device.Config{}, fmt.Errorf("camera index must be a non-negative integer")
	}
	return device.Config{
		DetectionThreshold:  threshold,
		CameraEnabled:       f.cameraEnabled,
		ExternalCameraIndex: index,
	}, nil
}

func (m *model) openSettings() tea.Cmd {
	if m.settingsOpen {
		return nil
	}
	m.settingsOpen = true
	m.form.loading = true
	return tea.Batch(m.spinner.Tick, loadConfigCmd(m.config.Device, m.config.Settings.RequestTimeout))
}

func (m *model) handleSettingsKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		m.settingsOpen = false
		return nil
	case tea.KeyTab, tea.KeyDown:
		m.form.setFocus((m.form.focus + 1) % fieldCount)
		return nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.form.setFocus((m.form.focus + fieldCount - 1) % fieldCount)
		return nil
	case tea.KeyEnter:
		return m.submitSettings()
	}

	switch m.form.focus {
	case fieldThreshold:
		var cmd tea.Cmd
		m.form.threshold, cmd = m.form.threshold.Update(key)
		return cmd
	case fieldCameraEnabled:
		if key.String() == " " {
			m.form.cameraEnabled = !m.form.cameraEnabled
		}
		return nil
	case fieldCameraIndex:
		var cmd tea.Cmd
		m.form.cameraIndex, cmd = m.form.cameraIndex.Update(key)
		return cmd
	}
	return nil
}

func (m *model) submitSettings() tea.Cmd {
	if m.form.loading || m.form.saving {
		return nil
	}
	cfg, err := m.form.parse()
	if err != nil {
		return m.alerts.enqueue(err.Error(), severityWarning, alertDuration)
	}
	m.form.saving = true
	return tea.Batch(m.spinner.Tick, saveConfigCmd(m.config.Device, cfg, m.config.Settings.RequestTimeout))
}

func (m *model) handleConfigLoaded(msg configLoadedMsg) tea.Cmd {
	m.form.loading = false
	if msg.err != nil {
		m.settingsOpen = false
		return m.alerts.enqueue(fmt.Sprintf("Could not load configuration: %v", msg.err), severityDanger, alertDuration)
	}
	m.form.populate(msg.cfg)
	return nil
}

func (m *model) handleConfigSaved(msg configSavedMsg) tea.Cmd {
	m.form.saving = false
	if msg.err != nil {
		return m.alerts.enqueue(fmt.Sprintf("Configuration update failed: %v", msg.err), severityDanger, alertDuration)
	}
	m.settingsOpen = false
	return m.alerts.enqueue("Configuration updated successfully.", severitySuccess, alertDuration)
}
