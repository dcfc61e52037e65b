package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"rebarvista/internal/device"
	"rebarvista/internal/export"
	"rebarvista/internal/history"
)

// Commands wrap device calls in closures returning typed messages. Each one
// captures the values it needs up front so the closure never touches model
// state from another goroutine.

func checkStatusCmd(api device.API, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		connected, err := api.Status(ctx)
		if err != nil {
			return statusResultMsg{failed: true}
		}
		return statusResultMsg{connected: connected}
	}
}

func fetchSnapshotCmd(api device.API, gen int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := api.LatestData(ctx)
		return snapshotResultMsg{gen: gen, snap: snap, err: err}
	}
}

func fetchImageCmd(api device.API, gen int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		payload, err := api.LatestImage(ctx)
		if err != nil {
			return imageResultMsg{gen: gen, err: err}
		}
		info, err := export.InspectImage(payload)
		if err != nil {
			return imageResultMsg{gen: gen, err: err}
		}
		return imageResultMsg{gen: gen, payload: payload, info: info}
	}
}

func triggerCaptureCmd(api device.API, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return captureResultMsg{err: api.TriggerCapture(ctx)}
	}
}

func loadConfigCmd(api device.API, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		cfg, err := api.FetchConfig(ctx)
		return configLoadedMsg{cfg: cfg, err: err}
	}
}

func saveConfigCmd(api device.API, cfg device.Config, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return configSavedMsg{err: api.ApplyConfig(ctx, cfg)}
	}
}

func settleCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return settleElapsedMsg{}
	})
}

func imageTimeoutCmd(gen int, timeout time.Duration) tea.Cmd {
	return tea.Tick(timeout, func(time.Time) tea.Msg {
		return imageTimeoutMsg{gen: gen}
	})
}

func pollCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

// waitForPushCmd blocks on the push channel and resolves to the next event.
// The model re-issues it after handling each message.
func waitForPushCmd(events <-chan device.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return pushEventMsg{event: event}
	}
}

func appendHistoryCmd(path string, entry history.Entry) tea.Cmd {
	return func() tea.Msg {
		// Best effort; a failed history write never disturbs the view.
		_ = history.Append(path, entry)
		return nil
	}
}

func loadHistoryCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := history.Load(path)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func exportCSVCmd(path string, snap device.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return exportDoneMsg{label: "CSV", path: path, err: export.SaveCSV(path, snap)}
	}
}

func exportPDFCmd(path string, snap device.Snapshot, payload string) tea.Cmd {
	return func() tea.Msg {
		return exportDoneMsg{label: "PDF", path: path, err: export.SavePDF(path, snap, payload)}
	}
}

func exportImageCmd(path, payload string) tea.Cmd {
	return func() tea.Msg {
		return exportDoneMsg{label: "image", path: path, err: export.SaveImage(path, payload)}
	}
}
