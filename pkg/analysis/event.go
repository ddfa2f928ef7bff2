package analysis

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies which per-frame check failed.
type EventKind string

const (
	EventFaceFailure EventKind = "face_failure"
	EventEyeFailure  EventKind = "eye_failure"
)

// Event records one failed attention check. Events are immutable after
// creation and evicted from the log by age or by capacity; an evicted
// event is gone for good, which is the data-loss contract that keeps
// memory bounded.
type Event struct {
	ID        string         `json:"id"`
	Kind      EventKind      `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Severity  Level          `json:"severity"` // level at creation, informational
	Details   map[string]any `json:"details,omitempty"`
}

func newEvent(kind EventKind, ts time.Time, severity Level, details map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: ts,
		Severity:  severity,
		Details:   details,
	}
}

// eventLog is the bounded, time-windowed event history. Oldest entries
// are dropped silently when either bound is exceeded.
type eventLog struct {
	events  []Event
	maxSize int
	window  time.Duration
}

func newEventLog(maxSize int, window time.Duration) *eventLog {
	return &eventLog{
		events:  make([]Event, 0, maxSize),
		maxSize: maxSize,
		window:  window,
	}
}

func (l *eventLog) add(e Event) {
	l.events = append(l.events, e)
}

// prune evicts entries at or past the window edge, then truncates to
// the most recent maxSize entries. Runs on every observation so the
// window is exact, not batched.
func (l *eventLog) prune(now time.Time) {
	cutoff := now.Add(-l.window)

	keep := l.events[:0]
	for _, e := range l.events {
		if e.Timestamp.After(cutoff) {
			keep = append(keep, e)
		}
	}
	l.events = keep

	if len(l.events) > l.maxSize {
		overflow := len(l.events) - l.maxSize
		copy(l.events, l.events[overflow:])
		l.events = l.events[:l.maxSize]
	}
}

// snapshot returns a deep copy; callers can never reach log-owned
// state, not even through a Details map.
func (l *eventLog) snapshot() []Event {
	out := make([]Event, len(l.events))
	for i, e := range l.events {
		if e.Details != nil {
			details := make(map[string]any, len(e.Details))
			for k, v := range e.Details {
				details[k] = v
			}
			e.Details = details
		}
		out[i] = e
	}
	return out
}

func (l *eventLog) len() int {
	return len(l.events)
}

func (l *eventLog) clear() {
	l.events = l.events[:0]
}
