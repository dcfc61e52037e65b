package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type severity int

const (
	severitySuccess severity = iota
	severityWarning
	severityDanger
)

// Alert is one transient user-facing notification. Duration zero marks a
// persistent alert that only manual dismissal removes.
type Alert struct {
	ID        int
	Message   string
	Severity  severity
	CreatedAt time.Time
	Duration  time.Duration
}

// alertQueue stacks alerts in arrival order. Expiry happens through the event
// loop: enqueue returns a command that fires alertExpiredMsg for the alert's
// id after its duration.
type alertQueue struct {
	nextID int
	items  []Alert
}

func (q *alertQueue) enqueue(message string, sev severity, duration time.Duration) tea.Cmd {
	q.nextID++
	q.items = append(q.items, Alert{
		ID:        q.nextID,
		Message:   message,
		Severity:  sev,
		CreatedAt: time.Now(),
		Duration:  duration,
	})
	if duration <= 0 {
		return nil
	}
	id := q.nextID
	return tea.Tick(duration, func(time.Time) tea.Msg {
		return alertExpiredMsg{id: id}
	})
}

// expire removes the alert with the given id if it is still queued.
func (q *alertQueue) expire(id int) {
	for i, alert := range q.items {
		if alert.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// dismiss removes the oldest queued alert.
func (q *alertQueue) dismiss() {
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
}

// clear removes all pending alerts immediately.
func (q *alertQueue) clear() {
	q.items = nil
}
