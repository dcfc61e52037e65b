package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ConnectionState is the single source of truth for whether the dashboard can
// reach the device. Only the machine below mutates it.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	default:
		return "Disconnected"
	}
}

// connMachine drives the Disconnected/Connecting/Connected lifecycle with
// bounded retry. Every scheduled retry carries the token current at schedule
// time; bumping the token invalidates older timers, so at most one scheduled
// retry is ever live. Status polls and push connection_status events both
// funnel through Apply, converging on identical state and side effects.
type connMachine struct {
	state      ConnectionState
	attempts   int
	maxRetries int
	retryDelay time.Duration
	timerToken int
}

func newConnMachine(maxRetries int, retryDelay time.Duration) connMachine {
	return connMachine{
		state:      Disconnected,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// State returns the current connection state.
func (c *connMachine) State() ConnectionState {
	return c.state
}

// Attempts returns the current reconnection attempt count for display.
func (c *connMachine) Attempts() int {
	return c.attempts
}

// CanCapture reports whether the capture trigger is permitted.
func (c *connMachine) CanCapture() bool {
	return c.state == Connected
}

// BeginCheck marks a status check in flight. Issuing a new check, from any
// trigger, invalidates a previously scheduled retry timer.
func (c *connMachine) BeginCheck() {
	c.timerToken++
	if c.state != Connected {
		c.state = Connecting
	}
}

// Apply folds a check outcome (or a push connection_status event) into the
// machine. It returns a retry command when one should be scheduled; a nil
// command with state Disconnected means the retry budget is exhausted and
// only an external trigger restarts checking.
func (c *connMachine) Apply(connected bool) tea.Cmd {
	if connected {
		c.state = Connected
		c.attempts = 0
		c.timerToken++
		return nil
	}
	c.state = Disconnected
	if c.attempts >= c.maxRetries {
		return nil
	}
	c.attempts++
	c.timerToken++
	token := c.timerToken
	return tea.Tick(c.retryDelay, func(time.Time) tea.Msg {
		return retryTimerMsg{token: token}
	})
}

// TimerValid reports whether a fired retry timer is still the scheduled one.
func (c *connMachine) TimerValid(token int) bool {
	return token == c.timerToken
}
