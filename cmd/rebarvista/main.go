package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"rebarvista/internal/config"
	"rebarvista/internal/device"
	"rebarvista/internal/logging"
	"rebarvista/internal/tui"
)

func main() {
	settings := config.Load()

	deviceURL := flag.String("device", settings.DeviceBaseURL, "base URL of the capture device API")
	pushURL := flag.String("push", settings.PushURL, "websocket URL of the device push channel")
	logPath := flag.String("log", settings.LogPath, "path to the diagnostic log file")
	historyPath := flag.String("history", settings.HistoryPath, "path to the capture history file")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	noPush := flag.Bool("no-push", false, "disable the push channel and rely on polling only")
	flag.Parse()

	settings.DeviceBaseURL = *deviceURL
	settings.PushURL = *pushURL
	settings.LogPath = *logPath
	settings.HistoryPath = *historyPath

	log, closeLog := logging.Open(settings.LogPath, settings.LogLevel)
	defer closeLog()

	client := device.NewClient(settings.DeviceBaseURL, settings.RequestTimeout, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events <-chan device.Event
	if !*noPush {
		listener := device.NewListener(settings.PushURL, log)
		go listener.Run(ctx)
		events = listener.Events()
	}

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Device:   client,
			Events:   events,
			Settings: settings,
			Log:      log,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
