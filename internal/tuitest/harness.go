// Package tuitest drives the dashboard binary through a pseudo terminal so
// integration tests can script keystrokes and inspect rendered frames.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/creack/pty"
)

const (
	defaultCols     = 110
	defaultRows     = 32
	defaultDeadline = 8 * time.Second
)

// Keystroke is one scripted input. Wait is applied before the bytes are
// written, giving the program time to render the previous state.
type Keystroke struct {
	Wait  time.Duration
	Bytes []byte
}

// Press builds a keystroke for a plain key sequence.
func Press(wait time.Duration, input string) Keystroke {
	return Keystroke{Wait: wait, Bytes: []byte(input)}
}

// Script describes one scripted dashboard session.
type Script struct {
	Command        []string
	Dir            string
	Env            []string
	Cols           int
	Rows           int
	Keys           []Keystroke
	Deadline       time.Duration
	AllowInterrupt bool
}

// Recording is everything the session wrote to the terminal, split into
// frames.
type Recording struct {
	Raw    []byte
	Frames []Frame
}

// Run executes the script inside a PTY and captures the terminal stream. It
// answers the terminal capability queries bubbletea issues on startup so the
// program never stalls waiting for a real terminal.
func Run(ctx context.Context, script Script) (*Recording, error) {
	if len(script.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	cols, rows := script.Cols, script.Rows
	if cols <= 0 {
		cols = defaultCols
	}
	if rows <= 0 {
		rows = defaultRows
	}
	deadline := script.Deadline
	if deadline <= 0 {
		deadline = defaultDeadline
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	cmd := exec.CommandContext(ctx, script.Command[0], script.Command[1:]...)
	cmd.Dir = script.Dir
	cmd.Env = sessionEnv(script.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	var output bytes.Buffer
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		var pending []byte
		buf := make([]byte, 4096)
		for {
			n, readErr := ptmx.Read(buf)
			if n > 0 {
				chunk := buf[:n]
				pending = answerQueries(ptmx, append(pending, chunk...))
				_, _ = output.Write(chunk)
			}
			if readErr != nil {
				return
			}
		}
	}()

	for _, key := range script.Keys {
		if key.Wait > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("tuitest: deadline before script finished: %w", ctx.Err())
			case <-time.After(key.Wait):
			}
		}
		if len(key.Bytes) > 0 {
			if _, err := ptmx.Write(key.Bytes); err != nil {
				return nil, fmt.Errorf("tuitest: write input: %w", err)
			}
		}
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	select {
	case err := <-waitErr:
		if err != nil && !exitAllowed(err, script.AllowInterrupt) {
			return nil, fmt.Errorf("tuitest: program exited with error: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("tuitest: timeout waiting for exit: %w", ctx.Err())
	}

	_ = ptmx.Close()
	<-drained

	raw := output.Bytes()
	return &Recording{Raw: raw, Frames: parseFrames(raw)}, nil
}

func exitAllowed(err error, allowInterrupt bool) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 0 {
		return true
	}
	return allowInterrupt && strings.Contains(err.Error(), "signal: interrupt")
}

func sessionEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

// Terminal capability queries and the canned answers that unblock them.
var queryAnswers = []struct{ query, answer []byte }{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

// answerQueries replies to any capability query found in buf and returns the
// unconsumed tail, trimmed so sequences split across reads are still matched.
func answerQueries(w io.Writer, buf []byte) []byte {
	for {
		matched := false
		for _, qa := range queryAnswers {
			if idx := bytes.Index(buf, qa.query); idx >= 0 {
				buf = buf[idx+len(qa.query):]
				_, _ = w.Write(qa.answer)
				matched = true
			}
		}
		if !matched {
			break
		}
	}
	if len(buf) > 256 {
		buf = buf[len(buf)-64:]
	}
	return append([]byte(nil), buf...)
}

var (
	// KeyEnter sends a carriage return.
	KeyEnter = []byte{'\r'}
	// KeyCtrlC asks the program to terminate.
	KeyCtrlC = []byte{3}
	// KeyEsc closes transient panels.
	KeyEsc = []byte{27}
)

// Frame is one terminal render: the raw ANSI segment between two repaints
// plus a plain-text projection with control sequences stripped.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

var (
	// bubbletea emits an erase-display sequence before each repaint; the
	// stream is cut into frames at those markers.
	eraseDisplay = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiSeq       = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscSeq       = regexp.MustCompile(`\x1b\][^\x07]*(\x07|\x1b\\)`)
)

func parseFrames(raw []byte) []Frame {
	stream := strings.ReplaceAll(string(raw), "\r", "")
	marks := eraseDisplay.FindAllStringIndex(stream, -1)
	marks = append(marks, []int{len(stream), len(stream)})

	var frames []Frame
	start := 0
	for _, mark := range marks {
		segment := stream[start:mark[0]]
		start = mark[1]
		plain := plainText(segment)
		if strings.TrimSpace(plain) == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), ANSI: segment, Plain: plain})
	}
	return frames
}

// plainText strips escape sequences and trailing whitespace so assertions can
// match what a reader of the terminal would see.
func plainText(segment string) string {
	s := oscSeq.ReplaceAllString(segment, "")
	s = csiSeq.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case 0, '\x0e', '\x0f':
			return -1
		}
		return r
	}, s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// FinalFrame returns the last captured frame; false when nothing rendered.
func (r *Recording) FinalFrame() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// Contains reports whether any frame's plain text contains text.
func (r *Recording) Contains(text string) bool {
	if r == nil {
		return false
	}
	for _, frame := range r.Frames {
		if strings.Contains(frame.Plain, text) {
			return true
		}
	}
	return false
}
