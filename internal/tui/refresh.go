package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"rebarvista/internal/export"
	"rebarvista/internal/history"
)

// startRefresh opens a new refresh cycle: the display clears first so a stale
// table is never shown next to a newer image (or vice versa), then the cycle
// is tagged with a fresh generation that supersedes any fetch still in
// flight.
func (m *model) startRefresh() tea.Cmd {
	m.refreshGen++
	m.refreshing = true
	m.snapshot = nil
	m.imagePayload = ""
	m.imageInfo = export.ImageInfo{}
	m.table.SetRows(nil)
	if m.captureBusy {
		m.imgState = imageProcessing
	} else {
		m.imgState = imageNone
	}
	return tea.Batch(
		m.spinner.Tick,
		fetchSnapshotCmd(m.config.Device, m.refreshGen, m.config.Settings.RequestTimeout),
	)
}

func (m *model) handleSnapshot(msg snapshotResultMsg) tea.Cmd {
	if msg.gen != m.refreshGen {
		// Superseded cycle; results are discarded regardless of arrival order.
		return nil
	}
	m.refreshing = false

	if msg.err != nil {
		// Metadata failure aborts the whole refresh and is treated exactly
		// like a failed status check.
		m.log.Warn("snapshot fetch failed", "err", msg.err)
		m.abortCapture()
		return m.applyStatus(false, true)
	}
	if !msg.snap.Connected {
		m.abortCapture()
		return m.applyStatus(false, false)
	}

	snap := msg.snap
	m.snapshot = &snap
	m.table.SetRows(segmentRows(snap.Segments))

	cmds := []tea.Cmd{appendHistoryCmd(m.config.Settings.HistoryPath, history.Entry{
		RecordedAt:  time.Now(),
		Timestamp:   snap.Timestamp,
		Segments:    snap.Segments,
		TotalVolume: snap.TotalVolume,
		HadImage:    snap.HasImage,
	})}

	if snap.HasImage {
		m.imgState = imageLoading
		cmds = append(cmds, fetchImageCmd(m.config.Device, msg.gen, m.config.Settings.RequestTimeout))
	} else if !m.captureBusy {
		m.imgState = imageNone
	}
	if m.captureBusy {
		// Arm the advisory deadline for this cycle; it fires against the
		// generation, never against what happens to be rendered.
		cmds = append(cmds, imageTimeoutCmd(msg.gen, m.config.Settings.ImageTimeout))
	}
	return tea.Batch(cmds...)
}

// abortCapture closes the capture window when its settle refresh cannot
// complete, so the trigger is usable again as soon as the device returns.
func (m *model) abortCapture() {
	if !m.captureBusy {
		return
	}
	m.captureBusy = false
	m.imgState = imageNone
}

func (m *model) handleImage(msg imageResultMsg) tea.Cmd {
	if msg.gen != m.refreshGen {
		return nil
	}
	if msg.err != nil {
		// Localized failure: the table stays populated, only the image area
		// reverts to an error placeholder.
		m.log.Warn("image fetch failed", "err", msg.err)
		m.imgState = imageFailed
		if m.captureBusy {
			m.captureBusy = false
			return m.alerts.enqueue(fmt.Sprintf("Image unavailable: %v", msg.err), severityDanger, alertDuration)
		}
		return nil
	}
	m.imagePayload = msg.payload
	m.imageInfo = msg.info
	m.imgState = imageReady
	m.captureBusy = false
	return nil
}

// handleImageTimeout flips the processing placeholder to a timeout indicator.
// Advisory only: nothing is canceled, and a result that still arrives for the
// latest generation replaces the indicator.
func (m *model) handleImageTimeout(msg imageTimeoutMsg) {
	if msg.gen != m.refreshGen || !m.captureBusy {
		return
	}
	if m.imgState == imageReady {
		return
	}
	m.imgState = imageTimedOut
	m.captureBusy = false
}
