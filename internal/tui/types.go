package tui

import (
	"time"

	"rebarvista/internal/device"
	"rebarvista/internal/export"
	"rebarvista/internal/history"
)

// imageState tracks the image panel independently of the table, so an image
// failure never erases rendered segment data.
type imageState int

const (
	imageNone imageState = iota
	imageLoading
	imageProcessing
	imageReady
	imageFailed
	imageTimedOut
)

const heroTagline = "Live segment volumes from the capture device."

const alertDuration = 5 * time.Second

// Messages produced by commands. Every message belonging to a refresh cycle
// carries the generation it was issued under; stale generations are discarded
// on arrival.

type statusResultMsg struct {
	connected bool
	failed    bool
}

type retryTimerMsg struct {
	token int
}

type pollTickMsg struct{}

type pushEventMsg struct {
	event device.Event
}

type snapshotResultMsg struct {
	gen  int
	snap device.Snapshot
	err  error
}

type imageResultMsg struct {
	gen     int
	payload string
	info    export.ImageInfo
	err     error
}

type imageTimeoutMsg struct {
	gen int
}

type captureResultMsg struct {
	err error
}

type settleElapsedMsg struct{}

type configLoadedMsg struct {
	cfg device.Config
	err error
}

type configSavedMsg struct {
	err error
}

type alertExpiredMsg struct {
	id int
}

type exportDoneMsg struct {
	label string
	path  string
	err   error
}

type historyLoadedMsg struct {
	entries []history.Entry
	err     error
}
