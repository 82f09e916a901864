package app

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dwilliams27/gc-decomp/internal/client"
	"github.com/dwilliams27/gc-decomp/internal/event"
	"github.com/dwilliams27/gc-decomp/internal/eventlog"
	"github.com/dwilliams27/gc-decomp/internal/worker"
)

func newTestModel(t *testing.T) (Model, *worker.Aggregator, *eventlog.Log) {
	t.Helper()
	lg := eventlog.New(0)
	agg := worker.NewAggregator()
	// Session is never connected in these tests; the model only reads
	// its state.
	session := client.NewSession("ws://127.0.0.1:1/ws/events", lg, agg)
	t.Cleanup(session.Close)
	return New(session, lg, agg, client.NewHTTPClient("http://127.0.0.1:1")), agg, lg
}

func feed(t *testing.T, agg *worker.Aggregator, raw string) {
	t.Helper()
	ev, err := event.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("bad test event: %v", err)
	}
	agg.Process(ev)
}

func TestStreamUpdateRefreshesCounts(t *testing.T) {
	m, agg, _ := newTestModel(t)
	feed(t, agg, `{"type":"agent_event","ts":1,"event":"iteration_start","function":"a"}`)
	feed(t, agg, `{"type":"agent_event","ts":2,"event":"iteration_start","function":"b"}`)
	feed(t, agg, `{"type":"agent_event","ts":3,"event":"function_matched","function":"b"}`)

	updated, _ := m.Update(streamUpdateMsg{})
	got := updated.(Model)
	if got.statusBar.Active != 1 || got.statusBar.Matched != 1 {
		t.Errorf("counts = %d active / %d matched, want 1/1",
			got.statusBar.Active, got.statusBar.Matched)
	}
	if got.statusBar.State != "disconnected" {
		t.Errorf("status bar state = %q, want disconnected", got.statusBar.State)
	}
}

func TestSelectionStaysInBounds(t *testing.T) {
	m, agg, _ := newTestModel(t)
	for i := 0; i < 3; i++ {
		feed(t, agg, fmt.Sprintf(`{"type":"agent_event","ts":%d,"event":"iteration_start","function":"f%d"}`, i, i))
	}

	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	up := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}

	cur := tea.Model(m)
	for i := 0; i < 10; i++ {
		cur, _ = cur.Update(down)
	}
	if got := cur.(Model).selectedIdx; got != 2 {
		t.Errorf("selectedIdx after overshoot down = %d, want 2", got)
	}
	for i := 0; i < 10; i++ {
		cur, _ = cur.Update(up)
	}
	if got := cur.(Model).selectedIdx; got != 0 {
		t.Errorf("selectedIdx after overshoot up = %d, want 0", got)
	}
}

func TestSelectionClampedAfterReset(t *testing.T) {
	m, agg, _ := newTestModel(t)
	for i := 0; i < 3; i++ {
		feed(t, agg, fmt.Sprintf(`{"type":"agent_event","ts":%d,"event":"iteration_start","function":"f%d"}`, i, i))
	}
	m.selectedIdx = 2

	agg.Reset()
	updated, _ := m.Update(streamUpdateMsg{})
	if got := updated.(Model).selectedIdx; got != 0 {
		t.Errorf("selectedIdx after reset = %d, want 0", got)
	}
}

func TestEventOverlayToggle(t *testing.T) {
	m, _, _ := newTestModel(t)
	d := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}}
	esc := tea.KeyMsg{Type: tea.KeyEsc}

	cur, _ := tea.Model(m).Update(d)
	if cur.(Model).overlay != OverlayEvents {
		t.Fatal("d did not open the event overlay")
	}
	cur, _ = cur.Update(esc)
	if cur.(Model).overlay != OverlayNone {
		t.Error("esc did not close the overlay")
	}
}

func TestResetKeyClearsAggregatorNotLog(t *testing.T) {
	m, agg, lg := newTestModel(t)
	feed(t, agg, `{"type":"agent_event","ts":1,"event":"iteration_start","function":"a"}`)
	ev, _ := event.Parse([]byte(`{"type":"agent_event","ts":1,"event":"iteration_start","function":"a"}`))
	lg.Append(ev)

	r := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}
	tea.Model(m).Update(r)

	if agg.Len() != 0 {
		t.Errorf("aggregator has %d records after reset, want 0", agg.Len())
	}
	if lg.Len() != 1 {
		t.Errorf("event log touched by reset: %d entries, want 1", lg.Len())
	}
}

func TestViewRendersWithoutWorkers(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.width, m.height = 100, 30
	if out := m.View(); out == "" {
		t.Error("empty view")
	}
}
