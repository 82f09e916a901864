package worker

import (
	"sync"

	"github.com/dwilliams27/gc-decomp/internal/event"
)

// Aggregator folds stream events into Records keyed by function name.
// It keeps a separate insertion order so display order is stable and
// independent of map iteration.
//
// Exactly one goroutine (the stream session's read loop) calls Process;
// readers get cloned snapshots and never see a half-applied event.
type Aggregator struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{records: make(map[string]*Record)}
}

// Process applies one event. Events without a function name are ignored.
// An event's kind can carry several markers at once; every matching rule
// fires, in a fixed order, before the next event is handled.
func (a *Aggregator) Process(ev *event.Event) {
	if ev.Function == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	rec, ok := a.records[ev.Function]
	if !ok {
		// Only a start marker creates a record; anything else aimed at
		// an unknown function is dropped.
		if !ev.Is(event.MarkerFunctionStart) && !ev.Is(event.MarkerIterationStart) {
			return
		}
		rec = &Record{
			Function:      ev.Function,
			Status:        Running,
			MaxIterations: DefaultMaxIterations,
			StartedAt:     ev.Time(),
		}
		a.records[ev.Function] = rec
		a.order = append(a.order, ev.Function)
	}

	if ev.Is(event.MarkerIterationStart) {
		if ev.Iteration != nil {
			rec.Iteration = *ev.Iteration
		}
		if ev.Max != nil {
			rec.MaxIterations = *ev.Max
		}
		if ev.Match != nil {
			rec.MatchPct = *ev.Match
		}
		if ev.Tokens != nil {
			rec.TokensUsed = *ev.Tokens
		}
		if ev.Budget != nil && *ev.Budget > 0 {
			rec.TokenBudget = *ev.Budget
		}
	}

	if ev.Is(event.MarkerToolCall) {
		tool := ev.Tool
		if tool == "" {
			tool = "unknown"
		}
		rec.ToolCalls = append(rec.ToolCalls, ToolCall{
			Tool:      tool,
			Iteration: rec.Iteration,
			Timestamp: ev.Time(),
		})
	}

	if ev.Is(event.MarkerMatchImproved) {
		if ev.New != nil {
			rec.MatchPct = *ev.New
		}
		rec.MatchHistory = append(rec.MatchHistory, MatchPoint{
			Iteration: rec.Iteration,
			MatchPct:  rec.MatchPct,
		})
	}

	if ev.Is(event.MarkerFunctionMatched) {
		rec.Status = Matched
		rec.MatchPct = 100
	}

	if ev.Is(event.MarkerAgentFinished) {
		if ev.Matched != nil && *ev.Matched {
			rec.Status = Matched
		} else {
			rec.Status = Failed
		}
		if ev.BestMatch != nil {
			rec.MatchPct = *ev.BestMatch
		}
		if ev.Tokens != nil {
			rec.TokensUsed = *ev.Tokens
		}
	}

	if ev.Is(event.MarkerAgentCrash) {
		rec.Status = Crashed
	}

	rec.LastEventKind = ev.Kind
	rec.LastEventAt = ev.Time()
}

// Get returns a snapshot of one record.
func (a *Aggregator) Get(function string) (*Record, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rec, ok := a.records[function]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// All returns record snapshots in first-seen order.
func (a *Aggregator) All() []*Record {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Record, 0, len(a.order))
	for _, fn := range a.order {
		out = append(out, a.records[fn].Clone())
	}
	return out
}

// Order returns the function names in first-seen order.
func (a *Aggregator) Order() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Len returns the number of tracked functions.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

// ActiveCount returns the number of non-terminal workers.
func (a *Aggregator) ActiveCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	count := 0
	for _, rec := range a.records {
		if !rec.IsTerminal() {
			count++
		}
	}
	return count
}

// Reset drops every record and the order list in one step. Readers see
// either the full previous state or an empty aggregator, never a mix.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = make(map[string]*Record)
	a.order = nil
}
