package mock

import (
	"encoding/json"
	"testing"

	"github.com/dwilliams27/gc-decomp/internal/event"
	"github.com/dwilliams27/gc-decomp/internal/worker"
)

// captureHub collects frames instead of broadcasting them.
type captureHub struct {
	frames [][]byte
}

func (h *captureHub) Broadcast(frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		panic(err)
	}
	h.frames = append(h.frames, data)
}

func TestGeneratedFramesAreWellFormed(t *testing.T) {
	hub := &captureHub{}
	g := NewGenerator(hub)
	for i := 0; i < 50; i++ {
		g.step()
	}
	if len(hub.frames) == 0 {
		t.Fatal("generator produced no frames")
	}
	for _, data := range hub.frames {
		ev, err := event.Parse(data)
		if err != nil {
			t.Fatalf("unparseable frame %s: %v", data, err)
		}
		if ev.Type != "agent_event" {
			t.Errorf("frame type = %q", ev.Type)
		}
		if ev.Function == "" {
			t.Errorf("frame without function: %s", data)
		}
		if ev.TS == 0 {
			t.Errorf("frame without timestamp: %s", data)
		}
	}
}

func TestGeneratedStreamFoldsToScriptedOutcomes(t *testing.T) {
	hub := &captureHub{}
	g := NewGenerator(hub)
	// Enough ticks for every scripted run to reach its terminal state.
	for i := 0; i < 60; i++ {
		g.step()
		if done := func() bool {
			for _, r := range g.runs {
				if !r.done {
					return false
				}
			}
			return true
		}(); done {
			break
		}
	}

	agg := worker.NewAggregator()
	for _, data := range hub.frames {
		ev, err := event.Parse(data)
		if err != nil {
			t.Fatal(err)
		}
		agg.Process(ev)
	}

	tests := []struct {
		function string
		want     worker.Status
	}{
		{"HSD_GObjProc", worker.Matched},
		{"Player_SetupWalkAnim", worker.Failed},
		{"Camera_UpdateInterest", worker.Crashed},
		{"lbColl_CheckHit", worker.Matched},
	}
	for _, tt := range tests {
		t.Run(tt.function, func(t *testing.T) {
			rec, ok := agg.Get(tt.function)
			if !ok {
				t.Fatal("no record folded from stream")
			}
			if rec.Status != tt.want {
				t.Errorf("Status = %v, want %v", rec.Status, tt.want)
			}
			if tt.want == worker.Matched && rec.MatchPct != 100 {
				t.Errorf("MatchPct = %v, want 100", rec.MatchPct)
			}
			if len(rec.ToolCalls) == 0 {
				t.Error("no tool calls recorded")
			}
		})
	}
}
