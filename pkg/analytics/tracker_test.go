package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticGate bool

func (g staticGate) CanUseNonEssential() bool { return bool(g) }

type brokenSink struct{}

func (brokenSink) Record(Event) error { return errors.New("sink unavailable") }

// flipGate changes its answer between calls.
type flipGate struct{ open bool }

func (g *flipGate) CanUseNonEssential() bool { return g.open }

func TestTrackerRespectsGate(t *testing.T) {
	sink := &MemorySink{}

	assert.False(t, NewTracker(staticGate(false), sink, nil).TrackEvent("download", "click", "linux"))
	assert.False(t, NewTracker(nil, sink, nil).TrackEvent("download", "click", "linux"))
	assert.Empty(t, sink.Events())

	assert.True(t, NewTracker(staticGate(true), sink, nil).TrackEvent("download", "click", "windows"))
	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "windows", events[0].Label)
	assert.False(t, events[0].At.IsZero())
}

func TestTrackerReadsGateEveryCall(t *testing.T) {
	gate := &flipGate{}
	sink := &MemorySink{}
	tr := NewTracker(gate, sink, nil)

	assert.False(t, tr.TrackEvent("a", "b", "c"))
	gate.open = true
	assert.True(t, tr.TrackEvent("a", "b", "c"))
	gate.open = false
	assert.False(t, tr.TrackEvent("a", "b", "c"))
	assert.Len(t, sink.Events(), 1)
}

func TestTrackerKeepsExplicitTimestamp(t *testing.T) {
	sink := &MemorySink{}
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	NewTracker(staticGate(true), sink, nil).Track(Event{Category: "page", Action: "view", Path: "/it/index.html", At: at})
	assert.Equal(t, at, sink.Events()[0].At)
}

func TestTrackerSinkFailure(t *testing.T) {
	assert.False(t, NewTracker(staticGate(true), brokenSink{}, nil).TrackEvent("a", "b", "c"))
	assert.NoError(t, LogSink{}.Record(Event{Category: "a"}))
}
