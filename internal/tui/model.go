package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"rebarvista/internal/config"
	"rebarvista/internal/device"
	"rebarvista/internal/export"
	"rebarvista/internal/format"
	"rebarvista/internal/history"
)

// Config wires runtime collaborators into the TUI program.
type Config struct {
	Device   device.API
	Events   <-chan device.Event
	Settings config.Settings
	Log      *slog.Logger
}

// New returns the dashboard model ready to be mounted into a Program.
func New(cfg Config) *model {
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.DiscardHandler)
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	columns := []table.Column{
		{Title: "Section", Width: 9},
		{Title: "Width (cm)", Width: 12},
		{Title: "Length (cm)", Width: 12},
		{Title: "Height (cm)", Width: 12},
		{Title: "Volume (cc)", Width: 12},
	}
	segTable := table.New(
		table.WithColumns(columns),
		table.WithHeight(8),
		table.WithFocused(false),
	)
	styles := table.DefaultStyles()
	styles.Selected = styles.Cell
	segTable.SetStyles(styles)

	return &model{
		config:  cfg,
		log:     cfg.Log,
		conn:    newConnMachine(cfg.Settings.MaxRetries, cfg.Settings.RetryDelay),
		spinner: spin,
		table:   segTable,
		form:    newSettingsForm(),
	}
}

type model struct {
	config Config
	log    *slog.Logger

	conn   connMachine
	alerts alertQueue

	// Refresh orchestrator state. refreshGen tags each cycle; only results
	// carrying the latest generation are ever applied.
	refreshGen int
	refreshing bool
	snapshot   *device.Snapshot

	imagePayload string
	imageInfo    export.ImageInfo
	imgState     imageState

	// captureBusy spans the trigger request plus the settle/timeout window.
	// A second trigger inside the window is rejected.
	captureBusy bool

	table   table.Model
	spinner spinner.Model

	form         settingsForm
	settingsOpen bool

	historyOpen    bool
	historyEntries []history.Entry

	helpVisible bool
	width       int
	height      int
}

func (m *model) Init() tea.Cmd {
	m.conn.BeginCheck()
	cmds := []tea.Cmd{
		m.spinner.Tick,
		checkStatusCmd(m.config.Device, m.config.Settings.RequestTimeout),
		pollCmd(m.config.Settings.PollInterval),
		m.startRefresh(),
	}
	if m.config.Events != nil {
		cmds = append(cmds, waitForPushCmd(m.config.Events))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusResultMsg:
		return m, m.applyStatus(msg.connected && !msg.failed, msg.failed)

	case retryTimerMsg:
		if !m.conn.TimerValid(msg.token) {
			return m, nil
		}
		m.conn.BeginCheck()
		return m, checkStatusCmd(m.config.Device, m.config.Settings.RequestTimeout)

	case pollTickMsg:
		m.conn.BeginCheck()
		return m, tea.Batch(
			checkStatusCmd(m.config.Device, m.config.Settings.RequestTimeout),
			pollCmd(m.config.Settings.PollInterval),
		)

	case pushEventMsg:
		return m, m.handlePushEvent(msg.event)

	case snapshotResultMsg:
		return m, m.handleSnapshot(msg)

	case imageResultMsg:
		return m, m.handleImage(msg)

	case imageTimeoutMsg:
		m.handleImageTimeout(msg)
		return m, nil

	case captureResultMsg:
		return m, m.handleCaptureResult(msg)

	case settleElapsedMsg:
		return m, m.startRefresh()

	case configLoadedMsg:
		return m, m.handleConfigLoaded(msg)

	case configSavedMsg:
		return m, m.handleConfigSaved(msg)

	case alertExpiredMsg:
		m.alerts.expire(msg.id)
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			return m, m.alerts.enqueue(fmt.Sprintf("%s export failed: %v", msg.label, msg.err), severityDanger, alertDuration)
		}
		return m, m.alerts.enqueue(fmt.Sprintf("Saved %s to %s", msg.label, msg.path), severitySuccess, alertDuration)

	case historyLoadedMsg:
		if msg.err != nil {
			return m, m.alerts.enqueue(fmt.Sprintf("Could not read history: %v", msg.err), severityWarning, alertDuration)
		}
		m.historyEntries = msg.entries
		m.historyOpen = true
		return m, nil
	}
	return m, nil
}

func (m *model) busy() bool {
	return m.refreshing || m.captureBusy || m.conn.State() == Connecting || m.form.loading || m.form.saving
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.settingsOpen {
		return m, m.handleSettingsKey(key)
	}
	if m.historyOpen {
		switch key.String() {
		case "esc", "h", "q":
			m.historyOpen = false
		}
		return m, nil
	}

	switch key.String() {
	case "q", "esc":
		return m, tea.Quit
	case "c":
		return m, m.triggerCapture()
	case "r":
		// Manual refresh doubles as the external trigger that restarts
		// status checking after the retry budget ran out.
		m.conn.BeginCheck()
		return m, tea.Batch(
			checkStatusCmd(m.config.Device, m.config.Settings.RequestTimeout),
			m.startRefresh(),
		)
	case "x":
		m.clearDisplay()
		return m, nil
	case "o":
		return m, m.openSettings()
	case "h":
		return m, loadHistoryCmd(m.config.Settings.HistoryPath)
	case "e":
		return m, m.exportCSV()
	case "p":
		return m, m.exportPDF()
	case "i":
		return m, m.exportImage()
	case "d":
		m.alerts.dismiss()
		return m, nil
	case "D":
		m.alerts.clear()
		return m, nil
	case "?":
		m.helpVisible = !m.helpVisible
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(key)
	return m, cmd
}

// applyStatus folds a connectivity outcome into the state machine and raises
// the transition alert on a Connected -> Disconnected edge. Background check
// failures are logged only; the status bar carries the attempt counter.
func (m *model) applyStatus(connected, failed bool) tea.Cmd {
	prev := m.conn.State()
	cmds := []tea.Cmd{m.conn.Apply(connected)}

	if failed {
		m.log.Debug("status check failed", "attempts", m.conn.Attempts())
	}
	now := m.conn.State()
	if prev == Connected && now == Disconnected {
		cmds = append(cmds, m.alerts.enqueue("Lost connection to the device.", severityDanger, alertDuration))
	}
	if now == Connected && prev != Connected {
		m.log.Info("device connected")
		if m.snapshot == nil && !m.refreshing {
			cmds = append(cmds, m.startRefresh())
		}
	}
	return tea.Batch(cmds...)
}

func (m *model) handlePushEvent(event device.Event) tea.Cmd {
	rearm := waitForPushCmd(m.config.Events)
	switch event.Kind {
	case device.EventConnect:
		// Channel established: short-circuit the polling path with an
		// immediate check through the same transition logic.
		m.conn.BeginCheck()
		return tea.Batch(rearm, checkStatusCmd(m.config.Device, m.config.Settings.RequestTimeout))
	case device.EventStatus:
		return tea.Batch(rearm, m.applyStatus(event.Connected, false))
	case device.EventNewData:
		return tea.Batch(rearm, m.startRefresh())
	case device.EventError:
		message := event.Message
		if message == "" {
			message = "device reported an unspecified error"
		}
		return tea.Batch(rearm, m.alerts.enqueue(message, severityWarning, alertDuration))
	default:
		return rearm
	}
}

func (m *model) triggerCapture() tea.Cmd {
	if !m.conn.CanCapture() {
		return m.alerts.enqueue("Cannot capture: not connected to the device.", severityWarning, alertDuration)
	}
	if m.captureBusy {
		return m.alerts.enqueue("A capture is already processing; wait for it to finish.", severityWarning, alertDuration)
	}
	m.captureBusy = true
	m.imgState = imageProcessing
	return tea.Batch(m.spinner.Tick, triggerCaptureCmd(m.config.Device, m.config.Settings.RequestTimeout))
}

func (m *model) handleCaptureResult(msg captureResultMsg) tea.Cmd {
	if msg.err != nil {
		m.captureBusy = false
		if m.imagePayload != "" {
			m.imgState = imageReady
		} else {
			m.imgState = imageNone
		}
		return m.alerts.enqueue(fmt.Sprintf("Capture failed: %v", msg.err), severityDanger, alertDuration)
	}
	// The device needs processing time before results are fetchable.
	return settleCmd(m.config.Settings.SettleDelay)
}

func (m *model) clearDisplay() {
	m.snapshot = nil
	m.imagePayload = ""
	m.imageInfo = export.ImageInfo{}
	m.imgState = imageNone
	m.table.SetRows(nil)
}

func (m *model) exportCSV() tea.Cmd {
	if m.snapshot == nil || len(m.snapshot.Segments) == 0 {
		return m.alerts.enqueue("No capture data to export.", severityWarning, alertDuration)
	}
	path := exportPath("csv", m.snapshot.Timestamp)
	return exportCSVCmd(path, *m.snapshot)
}

func (m *model) exportPDF() tea.Cmd {
	if m.snapshot == nil || len(m.snapshot.Segments) == 0 {
		return m.alerts.enqueue("No capture data to export.", severityWarning, alertDuration)
	}
	path := exportPath("pdf", m.snapshot.Timestamp)
	return exportPDFCmd(path, *m.snapshot, m.imagePayload)
}

func (m *model) exportImage() tea.Cmd {
	if m.imgState != imageReady || m.imagePayload == "" {
		return m.alerts.enqueue("No image available to save.", severityWarning, alertDuration)
	}
	ext := "jpg"
	if m.imageInfo.Format == "png" {
		ext = "png"
	}
	path := exportPath(ext, m.snapshotStamp())
	return exportImageCmd(path, m.imagePayload)
}

func (m *model) snapshotStamp() string {
	if m.snapshot != nil {
		return m.snapshot.Timestamp
	}
	return ""
}

func exportPath(ext, stamp string) string {
	if stamp == "" {
		stamp = time.Now().Format("20060102-150405")
	}
	return fmt.Sprintf("capture_%s.%s", stamp, ext)
}

func segmentRows(segments []device.Segment) []table.Row {
	rows := make([]table.Row, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", seg.SectionID),
			format.Dimension(seg.WidthCm),
			format.Dimension(seg.LengthCm),
			format.Dimension(seg.HeightCm),
			format.Volume(seg.VolumeCc),
		})
	}
	return rows
}
