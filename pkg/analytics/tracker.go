// Package analytics records page events for visitors who accepted
// non-essential data collection.
package analytics

import (
	"log/slog"
	"sync"
	"time"
)

// Gate decides whether non-essential collection may run.
type Gate interface {
	CanUseNonEssential() bool
}

// Event is a single tracked interaction, e.g. a download click.
type Event struct {
	Category string    `json:"category"`
	Action   string    `json:"action"`
	Label    string    `json:"label"`
	Path     string    `json:"path,omitempty"`
	At       time.Time `json:"at"`
}

// Sink stores or forwards events.
type Sink interface {
	Record(e Event) error
}

// Tracker checks the gate on every call. The answer is never cached.
type Tracker struct {
	gate   Gate
	sink   Sink
	logger *slog.Logger
	now    func() time.Time
}

// NewTracker creates a tracker. A nil logger uses slog.Default.
func NewTracker(gate Gate, sink Sink, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{gate: gate, sink: sink, logger: logger, now: time.Now}
}

// Track records e if the gate is open. It reports whether e was recorded.
func (t *Tracker) Track(e Event) bool {
	if t.gate == nil || !t.gate.CanUseNonEssential() {
		return false
	}
	if e.At.IsZero() {
		e.At = t.now().UTC()
	}
	if err := t.sink.Record(e); err != nil {
		t.logger.Warn("analytics event dropped", "category", e.Category, "action", e.Action, "error", err)
		return false
	}
	return true
}

// TrackEvent is Track without a page path.
func (t *Tracker) TrackEvent(category, action, label string) bool {
	return t.Track(Event{Category: category, Action: action, Label: label})
}

// LogSink writes events to a logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Record(e Event) error {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Info("analytics event",
		"category", e.Category,
		"action", e.Action,
		"label", e.Label,
		"path", e.Path,
		"at", e.At,
	)
	return nil
}

// MemorySink keeps events in memory.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func (s *MemorySink) Record(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// Events returns a copy of the recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}
