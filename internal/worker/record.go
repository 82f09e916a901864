// Package worker folds the agent event stream into per-function progress
// records. One Record tracks one decompilation attempt from its first
// iteration to a terminal state.
package worker

import (
	"encoding/json"
	"time"
)

// DefaultMaxIterations applies until the stream reports the real cap.
const DefaultMaxIterations = 30

// Status is a worker's lifecycle state.
type Status int

const (
	Running Status = iota
	Matched
	Failed
	Crashed
)

var statusNames = map[Status]string{
	Running: "running",
	Matched: "matched",
	Failed:  "failed",
	Crashed: "crashed",
}

var statusFromName = map[string]Status{
	"running": Running,
	"matched": Matched,
	"failed":  Failed,
	"crashed": Crashed,
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if v, ok := statusFromName[name]; ok {
		*s = v
	}
	return nil
}

// ToolCall records one tool invocation by the agent.
type ToolCall struct {
	Tool      string    `json:"tool"`
	Iteration int       `json:"iteration"`
	Timestamp time.Time `json:"timestamp"`
}

// MatchPoint records the match percentage at a given iteration.
type MatchPoint struct {
	Iteration int     `json:"iteration"`
	MatchPct  float64 `json:"matchPct"`
}

// Record is the derived progress state for one function. Histories are
// append-only for the record's lifetime; only a full aggregator reset
// discards them.
type Record struct {
	Function      string       `json:"function"`
	Status        Status       `json:"status"`
	Iteration     int          `json:"iteration"`
	MaxIterations int          `json:"maxIterations"`
	MatchPct      float64      `json:"matchPct"`
	TokensUsed    int          `json:"tokensUsed"`
	TokenBudget   int          `json:"tokenBudget"` // 0 = unknown
	ToolCalls     []ToolCall   `json:"toolCalls,omitempty"`
	MatchHistory  []MatchPoint `json:"matchHistory,omitempty"`
	StartedAt     time.Time    `json:"startedAt"`
	LastEventKind string       `json:"lastEventKind,omitempty"`
	LastEventAt   time.Time    `json:"lastEventAt"`
}

// Clone returns a deep copy, duplicating history slices so the copy can
// be retained across further aggregator updates.
func (r *Record) Clone() *Record {
	c := *r
	if len(r.ToolCalls) > 0 {
		c.ToolCalls = make([]ToolCall, len(r.ToolCalls))
		copy(c.ToolCalls, r.ToolCalls)
	}
	if len(r.MatchHistory) > 0 {
		c.MatchHistory = make([]MatchPoint, len(r.MatchHistory))
		copy(c.MatchHistory, r.MatchHistory)
	}
	return &c
}

// IsTerminal reports whether the agent has stopped working this function.
// Terminal is not final: a later event may still move the record (the
// stream is trusted to be causally ordered per function).
func (r *Record) IsTerminal() bool {
	return r.Status != Running
}

// RenderMatchPct clamps the match percentage to [0, 100] for display.
// The raw value is kept unclamped so transient over-reports stay visible
// to diagnostics.
func (r *Record) RenderMatchPct() float64 {
	switch {
	case r.MatchPct < 0:
		return 0
	case r.MatchPct > 100:
		return 100
	}
	return r.MatchPct
}
