// Package event defines the wire format of the agent's telemetry stream.
// Every frame the server sends is one JSON object; fields beyond the
// envelope depend on which lifecycle step the agent is reporting.
package event

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Keepalive is the outer frame type of the server's reply to a client
// "ping". Keepalive frames never reach the log or the aggregator.
const Keepalive = "pong"

// Marker substrings recognized by the worker aggregator. Event kinds are
// hierarchical ("batch_function_start" carries "function_start"), so
// matching is containment, not equality.
const (
	MarkerFunctionStart   = "function_start"
	MarkerIterationStart  = "iteration_start"
	MarkerToolCall        = "tool_call"
	MarkerMatchImproved   = "match_improved"
	MarkerFunctionMatched = "function_matched"
	MarkerAgentFinished   = "agent_finished"
	MarkerAgentCrash      = "agent_crash"
)

// Event is one decoded frame. Optional numeric and boolean fields are
// pointers so a present zero value is distinguishable from an absent
// field. Events are immutable once decoded.
type Event struct {
	Type       string   `json:"type"`
	TS         float64  `json:"ts"`
	Kind       string   `json:"event,omitempty"`
	Function   string   `json:"function,omitempty"`
	Level      string   `json:"level,omitempty"`
	SourceFile string   `json:"source_file,omitempty"`
	Iteration  *int     `json:"iteration,omitempty"`
	Max        *int     `json:"max,omitempty"`
	Match      *float64 `json:"match,omitempty"`
	Tokens     *int     `json:"tokens,omitempty"`
	Budget     *int     `json:"budget,omitempty"`
	New        *float64 `json:"new,omitempty"`
	Matched    *bool    `json:"matched,omitempty"`
	BestMatch  *float64 `json:"best_match,omitempty"`
	Tool       string   `json:"tool,omitempty"`

	// Extra holds keys outside the recognized set, untouched.
	Extra map[string]any `json:"-"`
}

// known lists every key decoded into a named field, for Extra filtering.
var known = map[string]bool{
	"type": true, "ts": true, "event": true, "function": true,
	"level": true, "source_file": true, "iteration": true, "max": true,
	"match": true, "tokens": true, "budget": true, "new": true,
	"matched": true, "best_match": true, "tool": true,
}

// Parse decodes a wire frame. It returns an error only when the data is
// not a JSON object; missing fields are not an error.
func Parse(data []byte) (*Event, error) {
	type alias Event
	var ev alias
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for key, val := range raw {
		if known[key] {
			continue
		}
		var v any
		if json.Unmarshal(val, &v) == nil {
			if ev.Extra == nil {
				ev.Extra = make(map[string]any)
			}
			ev.Extra[key] = v
		}
	}

	out := Event(ev)
	return &out, nil
}

// Is reports whether the event's kind carries the given marker.
func (e *Event) Is(marker string) bool {
	return strings.Contains(e.Kind, marker)
}

// IsKeepalive reports whether the frame is the server's keepalive reply.
func (e *Event) IsKeepalive() bool {
	return e.Type == Keepalive
}

// Time converts the frame's unix-seconds timestamp to a time.Time.
func (e *Event) Time() time.Time {
	sec, frac := math.Modf(e.TS)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}
