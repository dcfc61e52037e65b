package device

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// EventKind names the push notifications the device emits.
type EventKind string

const (
	// EventConnect fires locally when the push channel is (re)established.
	EventConnect EventKind = "connect"
	// EventStatus carries the device's connected boolean.
	EventStatus EventKind = "connection_status"
	// EventNewData announces a fresh capture; it carries no payload and the
	// client refetches.
	EventNewData EventKind = "new_data"
	// EventError surfaces a device-side polling error as advisory text.
	EventError EventKind = "connection_error"
)

// Event is one push notification, decoded from the wire.
type Event struct {
	Kind      EventKind
	Connected bool
	Message   string
}

type pushFrame struct {
	Event   string `json:"event"`
	Payload struct {
		Connected bool   `json:"connected"`
		Error     string `json:"error"`
	} `json:"payload"`
}

const redialDelay = 5 * time.Second

// Listener maintains the persistent push channel to the device, redialing
// when the socket drops. Decoded events come out of Events; Run blocks until
// the context is canceled.
type Listener struct {
	url    string
	dialer *websocket.Dialer
	log    *slog.Logger
	events chan Event
}

// NewListener returns a listener for the device push channel at url.
func NewListener(url string, log *slog.Logger) *Listener {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Listener{
		url:    url,
		dialer: websocket.DefaultDialer,
		log:    log,
		events: make(chan Event, 8),
	}
}

// Events returns the stream of decoded push events.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Run dials the push channel and pumps events until ctx is canceled. Dial and
// read failures are logged, never surfaced as alerts; the connection state
// machine reflects them through its own polling.
func (l *Listener) Run(ctx context.Context) {
	for {
		conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
		if err != nil {
			l.log.Debug("push dial failed", "url", l.url, "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(redialDelay):
				continue
			}
		}

		l.emit(ctx, Event{Kind: EventConnect})
		l.readLoop(ctx, conn)
		conn.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(redialDelay):
		}
	}
}

func (l *Listener) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var frame pushFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() == nil {
				l.log.Debug("push read failed", "err", err)
			}
			return
		}
		event, ok := decodeEvent(frame)
		if !ok {
			l.log.Debug("push frame ignored", "event", frame.Event)
			continue
		}
		l.emit(ctx, event)
	}
}

func (l *Listener) emit(ctx context.Context, event Event) {
	select {
	case l.events <- event:
	case <-ctx.Done():
	}
}

func decodeEvent(frame pushFrame) (Event, bool) {
	switch EventKind(frame.Event) {
	case EventStatus:
		return Event{Kind: EventStatus, Connected: frame.Payload.Connected}, true
	case EventNewData:
		return Event{Kind: EventNewData}, true
	case EventError:
		return Event{Kind: EventError, Message: frame.Payload.Error}, true
	default:
		return Event{}, false
	}
}

// decodeEventJSON is a test seam for raw frames.
func decodeEventJSON(raw []byte) (Event, bool) {
	var frame pushFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Event{}, false
	}
	return decodeEvent(frame)
}
