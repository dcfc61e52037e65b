package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"rebarvista/internal/format"
	"rebarvista/internal/history"
)

// View is a pure projection of the model: it reads connection state, the
// current snapshot, and the image payload, and never originates network calls
// or alerts.
func (m *model) View() string {
	parts := []string{m.heroView(), m.statusBarView()}

	switch {
	case m.settingsOpen:
		parts = append(parts, m.settingsView())
	case m.historyOpen:
		parts = append(parts, m.historyView())
	default:
		parts = append(parts, m.dataView(), m.imagePanelView())
	}

	if alerts := m.alertsView(); alerts != "" {
		parts = append(parts, alerts)
	}
	if m.helpVisible {
		parts = append(parts, m.helpView())
	}
	parts = append(parts, m.footerView())
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("RebarVista"),
		taglineStyle.Render(heroTagline),
	)
}

func (m *model) statusBarView() string {
	var state string
	switch m.conn.State() {
	case Connected:
		state = connectedStyle.Render("● Connected")
	case Connecting:
		state = connectingStyle.Render(fmt.Sprintf("%s Connecting", m.spinner.View()))
	default:
		state = disconnectedStyle.Render("✕ Disconnected")
	}
	stats := []string{state}
	if m.conn.State() != Connected && m.conn.Attempts() > 0 {
		stats = append(stats, fmt.Sprintf("retry %d/%d", m.conn.Attempts(), m.config.Settings.MaxRetries))
	}
	if m.captureBusy {
		stats = append(stats, fmt.Sprintf("%s capturing…", m.spinner.View()))
	}
	if m.refreshing {
		stats = append(stats, fmt.Sprintf("%s refreshing…", m.spinner.View()))
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) dataView() string {
	if m.snapshot == nil {
		if m.refreshing {
			return placeholderStyle.Render(fmt.Sprintf("%s Loading capture data…", m.spinner.View()))
		}
		return placeholderStyle.Render("◌ No capture data. Press c to trigger a capture.")
	}

	lines := []string{
		sectionHeaderStyle.Render("Measured Segments"),
		m.table.View(),
		totalStyle.Render(format.TotalLine(m.snapshot.TotalVolume)),
		helperStyle.Render("Last capture: " + format.Timestamp(m.snapshot.Timestamp)),
	}
	return strings.Join(lines, "\n")
}

func (m *model) imagePanelView() string {
	header := sectionHeaderStyle.Render("Capture Image")
	var body string
	switch m.imgState {
	case imageReady:
		body = fmt.Sprintf("%dx%d %s (%.1f KB) — press i to save",
			m.imageInfo.Width, m.imageInfo.Height,
			strings.ToUpper(m.imageInfo.Format), float64(m.imageInfo.Bytes)/1024)
	case imageLoading:
		body = fmt.Sprintf("%s Loading image…", m.spinner.View())
	case imageProcessing:
		body = fmt.Sprintf("%s Processing capture…", m.spinner.View())
	case imageFailed:
		body = errorStyle.Render("⚠ Image could not be loaded.")
	case imageTimedOut:
		body = errorStyle.Render("⏱ No image arrived in time. It may still appear on the next refresh.")
	default:
		body = helperStyle.Render("No image for this capture.")
	}
	return header + "\n" + imageBoxStyle.Render(body)
}

func (m *model) alertsView() string {
	if len(m.alerts.items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.alerts.items))
	for _, alert := range m.alerts.items {
		var style lipgloss.Style
		switch alert.Severity {
		case severitySuccess:
			style = alertSuccessStyle
		case severityWarning:
			style = alertWarningStyle
		default:
			style = alertDangerStyle
		}
		lines = append(lines, style.Render(wordwrap.String(alert.Message, m.wrapWidth())))
	}
	return strings.Join(lines, "\n")
}

func (m *model) settingsView() string {
	if m.form.loading {
		return placeholderStyle.Render(fmt.Sprintf("%s Loading device configuration…", m.spinner.View()))
	}
	cursor := func(field int) string {
		if m.form.focus == field {
			return "> "
		}
		return "  "
	}
	enabled := "[ ]"
	if m.form.cameraEnabled {
		enabled = "[x]"
	}
	lines := []string{
		sectionHeaderStyle.Render("Device Settings"),
		fmt.Sprintf("%sDetection threshold: %s", cursor(fieldThreshold), m.form.threshold.View()),
		fmt.Sprintf("%sCamera enabled:      %s (space toggles)", cursor(fieldCameraEnabled), enabled),
		fmt.Sprintf("%sExternal camera:     %s", cursor(fieldCameraIndex), m.form.cameraIndex.View()),
		helperStyle.Render("Tab to move, Enter to apply, Esc to cancel."),
	}
	if m.form.saving {
		lines = append(lines, helperStyle.Render(fmt.Sprintf("%s Applying…", m.spinner.View())))
	}
	return strings.Join(lines, "\n")
}

func (m *model) historyView() string {
	lines := []string{sectionHeaderStyle.Render("Capture History")}
	if len(m.historyEntries) == 0 {
		lines = append(lines, helperStyle.Render("No captures recorded yet."))
	} else {
		for _, entry := range history.Recent(m.historyEntries, 10) {
			lines = append(lines, fmt.Sprintf(" %s — %d segment(s), %s",
				format.Timestamp(entry.Timestamp), len(entry.Segments), format.TotalLine(entry.TotalVolume)))
		}
	}
	lines = append(lines, helperStyle.Render("Press h or Esc to close."))
	return strings.Join(lines, "\n")
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("Keys"),
		helperStyle.Render("• c triggers a capture, r forces a refresh and reconnect check."),
		helperStyle.Render("• e exports CSV, p exports a PDF report, i saves the capture image."),
		helperStyle.Render("• o opens device settings, h shows capture history, x clears the display."),
		helperStyle.Render("• d dismisses the oldest alert, D clears all alerts."),
		helperStyle.Render("• ? hides this overlay, q or Ctrl+C quits."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) footerView() string {
	return helperStyle.Render("c capture • r refresh • e csv • p pdf • i image • o settings • h history • ? help • q quit")
}

func (m *model) wrapWidth() int {
	if m.width <= 0 {
		return 76
	}
	width := m.width - 4
	if width < 20 {
		width = 20
	}
	return width
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

var (
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	taglineStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	totalStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("150"))
	placeholderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(1, 2)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	connectedStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1b4332"))
	connectingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f5539"))
	disconnectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9b2226"))
	imageBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 2)
	helpBoxStyle       = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	alertSuccessStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c"))
	alertWarningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd166"))
	alertDangerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef476f"))
)
