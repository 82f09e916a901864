// Package eventlog keeps a bounded window of raw stream events for the
// debug overlay, plus the current connectivity flag.
package eventlog

import (
	"sync"

	"github.com/dwilliams27/gc-decomp/internal/event"
)

// DefaultCapacity is the retained-event window size.
const DefaultCapacity = 500

// Log is a FIFO-eviction buffer of decoded events. Single writer (the
// stream session), any number of readers.
type Log struct {
	mu        sync.RWMutex
	entries   []*event.Event
	capacity  int
	connected bool
}

// New creates an empty log. A capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Append adds an event, evicting the oldest entries once the log is full.
func (l *Log) Append(ev *event.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, ev)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// SetConnected updates the connectivity flag. Log contents are unaffected.
func (l *Log) SetConnected(connected bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = connected
}

// Connected reports the connectivity flag.
func (l *Log) Connected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.connected
}

// Events returns the retained entries in arrival order. The slice is a
// copy; the events themselves are immutable and shared.
func (l *Log) Events() []*event.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*event.Event, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear empties the log. Connectivity is not touched.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
