package tui

import (
	"testing"
	"time"
)

func TestEnqueueSchedulesExpiry(t *testing.T) {
	var q alertQueue
	if cmd := q.enqueue("saved", severitySuccess, time.Second); cmd == nil {
		t.Fatal("timed alert should return an expiry command")
	}
	if len(q.items) != 1 {
		t.Fatalf("queue length %d, want 1", len(q.items))
	}
}

func TestPersistentAlertHasNoExpiry(t *testing.T) {
	var q alertQueue
	if cmd := q.enqueue("device offline", severityDanger, 0); cmd != nil {
		t.Fatal("persistent alert should not schedule expiry")
	}
	q.expire(q.items[0].ID + 1)
	if len(q.items) != 1 {
		t.Fatal("expiry for an unknown id should not remove anything")
	}
}

func TestExpireRemovesOnlyMatchingAlert(t *testing.T) {
	var q alertQueue
	q.enqueue("first", severityWarning, time.Second)
	q.enqueue("second", severityWarning, time.Second)
	first := q.items[0].ID

	q.expire(first)
	if len(q.items) != 1 || q.items[0].Message != "second" {
		t.Fatalf("unexpected queue after expire: %+v", q.items)
	}
	// A late timer for the already-removed alert is a no-op.
	q.expire(first)
	if len(q.items) != 1 {
		t.Fatalf("stale expiry changed the queue: %+v", q.items)
	}
}

func TestDismissRemovesOldest(t *testing.T) {
	var q alertQueue
	q.enqueue("first", severityWarning, time.Second)
	q.enqueue("second", severityWarning, time.Second)

	q.dismiss()
	if len(q.items) != 1 || q.items[0].Message != "second" {
		t.Fatalf("dismiss should drop the oldest alert, got %+v", q.items)
	}
	q.dismiss()
	q.dismiss()
	if len(q.items) != 0 {
		t.Fatal("dismiss on an empty queue should be a no-op")
	}
}

func TestClearEmptiesQueue(t *testing.T) {
	var q alertQueue
	q.enqueue("one", severityWarning, time.Second)
	q.enqueue("two", severityDanger, 0)
	q.clear()
	if len(q.items) != 0 {
		t.Fatalf("clear left %d alerts", len(q.items))
	}
}
