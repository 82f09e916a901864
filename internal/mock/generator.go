package mock

import (
	"context"
	"math/rand"
	"time"
)

// outcome decides how a scripted run ends.
type outcome string

const (
	outcomeMatched outcome = "matched" // reaches 100% and finishes matched
	outcomeFailed  outcome = "failed"  // stalls below 100%, runs out of iterations
	outcomeCrashed outcome = "crashed" // dies mid-run
)

// mockRun scripts one function's decompilation attempt.
type mockRun struct {
	function   string
	sourceFile string
	maxIter    int
	budget     int
	tools      []string
	outcome    outcome
	startTick  int // tick at which the run begins
	crashIter  int // iteration at which a crashing run dies

	iteration int
	matchPct  float64
	tokens    int
	toolIdx   int
	done      bool
}

var defaultRuns = []*mockRun{
	{
		function: "HSD_GObjProc", sourceFile: "sysdolphin/baselib/gobjproc.c",
		maxIter: 30, budget: 90000, outcome: outcomeMatched, startTick: 0,
		tools: []string{"read_source", "compile_and_check", "run_permuter", "compile_and_check"},
	},
	{
		function: "Player_SetupWalkAnim", sourceFile: "melee/ft/ftanim.c",
		maxIter: 30, budget: 90000, outcome: outcomeFailed, startTick: 3,
		tools: []string{"read_source", "disassemble", "compile_and_check", "compile_and_check"},
	},
	{
		function: "Camera_UpdateInterest", sourceFile: "melee/gr/grcamera.c",
		maxIter: 20, budget: 60000, outcome: outcomeCrashed, startTick: 6, crashIter: 7,
		tools: []string{"read_source", "compile_and_check"},
	},
	{
		function: "lbColl_CheckHit", sourceFile: "melee/lb/lbcoll.c",
		maxIter: 30, budget: 90000, outcome: outcomeMatched, startTick: 10,
		tools: []string{"read_source", "m2c_decompile", "compile_and_check", "run_permuter"},
	},
}

// Broadcaster receives the generated frames. Satisfied by *Hub.
type Broadcaster interface {
	Broadcast(frame any)
}

// Generator replays scripted runs through a Broadcaster at a fixed
// tick rate.
type Generator struct {
	hub  Broadcaster
	runs []*mockRun
	tick int
	rng  *rand.Rand
}

func NewGenerator(hub Broadcaster) *Generator {
	return &Generator{
		hub:  hub,
		runs: defaultRuns,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start ticks the generator until the context is cancelled. Finished
// runs restart from scratch so the stream never goes quiet.
func (g *Generator) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.step()
		}
	}
}

func (g *Generator) step() {
	g.tick++
	allDone := true
	for _, run := range g.runs {
		if run.done || g.tick < run.startTick {
			if !run.done {
				allDone = false
			}
			continue
		}
		allDone = false
		g.advance(run)
	}
	if allDone {
		for _, run := range g.runs {
			run.iteration = 0
			run.matchPct = 0
			run.tokens = 0
			run.toolIdx = 0
			run.done = false
			run.startTick = g.tick + g.rng.Intn(8)
		}
	}
}

// advance plays one iteration of a run: iteration_start, a tool call,
// and whatever progress or terminal event the script calls for.
func (g *Generator) advance(run *mockRun) {
	run.iteration++
	run.tokens += 1500 + g.rng.Intn(2500)

	if run.iteration == 1 {
		g.emit(run, "function_start", map[string]any{})
	}
	g.emit(run, "iteration_start", map[string]any{
		"iteration": run.iteration,
		"max":       run.maxIter,
		"match":     run.matchPct,
		"tokens":    run.tokens,
		"budget":    run.budget,
	})

	tool := run.tools[run.toolIdx%len(run.tools)]
	run.toolIdx++
	g.emit(run, "tool_call", map[string]any{"tool": tool})

	if run.outcome == outcomeCrashed && run.iteration >= run.crashIter {
		g.emit(run, "agent_crash", map[string]any{"error": "permuter subprocess killed"})
		run.done = true
		return
	}

	// Match climbs quickly at first, then grinds. Failed runs plateau
	// short of 100%; matched runs close the final gap instead of
	// approaching it forever.
	ceiling := 100.0
	if run.outcome == outcomeFailed {
		ceiling = 82 + g.rng.Float64()*10
	}
	if run.matchPct < ceiling {
		gain := (ceiling - run.matchPct) * (0.15 + g.rng.Float64()*0.2)
		if gain < 4 {
			gain = ceiling - run.matchPct
		}
		run.matchPct += gain
		if run.matchPct > ceiling {
			run.matchPct = ceiling
		}
		g.emit(run, "match_improved", map[string]any{"new": run.matchPct})
	}

	switch {
	case run.outcome == outcomeMatched && run.matchPct >= 99.5:
		run.matchPct = 100
		g.emit(run, "function_matched", map[string]any{"trigger": "compile_and_check"})
		g.emit(run, "agent_finished", map[string]any{
			"matched": true, "best_match": 100.0, "tokens": run.tokens,
			"iterations": run.iteration,
		})
		run.done = true
	case run.iteration >= run.maxIter:
		g.emit(run, "agent_finished", map[string]any{
			"matched": false, "best_match": run.matchPct, "tokens": run.tokens,
			"iterations": run.iteration, "reason": "max_iterations",
		})
		run.done = true
	}
}

func (g *Generator) emit(run *mockRun, kind string, fields map[string]any) {
	frame := map[string]any{
		"type":        "agent_event",
		"ts":          float64(time.Now().UnixNano()) / float64(time.Second),
		"event":       kind,
		"function":    run.function,
		"source_file": run.sourceFile,
	}
	for k, v := range fields {
		frame[k] = v
	}
	g.hub.Broadcast(frame)
}
