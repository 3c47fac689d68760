package simulator

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// Phase represents the stage of the defragmentation cycle. Phases advance
// strictly forward; only an explicit restart returns to PhaseInitializing.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseAnalyzing
	PhaseDefragmenting
	PhaseFinished
)

// String returns the string representation of Phase
func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseDefragmenting:
		return "defragmenting"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// StatusLine returns the user-facing status text for the phase
func (p Phase) StatusLine() string {
	switch p {
	case PhaseInitializing:
		return "Initializing..."
	case PhaseAnalyzing:
		return "Analyzing disk..."
	case PhaseDefragmenting:
		return "Defragmenting..."
	case PhaseFinished:
		return "Complete"
	default:
		return ""
	}
}

// MarshalJSON implements json.Marshaler for Phase
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler for Phase
func (p *Phase) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	for _, candidate := range []Phase{PhaseInitializing, PhaseAnalyzing, PhaseDefragmenting, PhaseFinished} {
		if candidate.String() == str {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("invalid phase: %s", str)
}

// pendingMove is a move held across animation ticks: the source cluster is
// marked Reading and the destination Writing until ticksLeft reaches zero,
// then the pair resolves to Unused/Used.
type pendingMove struct {
	src       int
	dst       int
	ticksLeft int
}

// Engine is the defragmentation state machine. It is a PURE single-threaded
// component with NO concurrency primitives: all mutation happens inside
// Tick(), driven by the caller, and the engine never retains cluster data
// between ticks beyond the in-flight move marker.
type Engine struct {
	phase       Phase
	tickInPhase int
	initTicks   int
	scanRate    int
	holdTicks   int
	scanPos     int // read head position during Analyzing, -1 otherwise
	move        *pendingMove
	rng         *rand.Rand
}

// NewEngine creates an engine in PhaseInitializing
func NewEngine(cfg SimConfig, rng *rand.Rand) *Engine {
	return &Engine{
		phase:     PhaseInitializing,
		initTicks: cfg.InitTicks,
		scanRate:  cfg.ScanRate,
		holdTicks: cfg.Speed.HoldTicks(),
		scanPos:   -1,
		rng:       rng,
	}
}

// Phase returns the current phase
func (e *Engine) Phase() Phase { return e.phase }

// ScanPos returns the analyzer read head position, or -1 when not scanning
func (e *Engine) ScanPos() int { return e.scanPos }

func (e *Engine) transition(p Phase) {
	e.phase = p
	e.tickInPhase = 0
	e.scanPos = -1
}

// Tick advances the state machine by one step, mutating grid and stats in
// place, and returns the sound the tick produced (SoundNone for a silent
// tick). A tick that finds no eligible move is a stall, not an error: the
// grid is left untouched and the engine retries on the next tick.
func (e *Engine) Tick(g *Grid, st *Stats) SoundEvent {
	st.Ticks++
	e.tickInPhase++

	switch e.phase {
	case PhaseInitializing:
		if e.tickInPhase >= e.initTicks {
			// The workload is fixed here, before any cluster moves.
			st.TotalToMove = g.Count(StatePending)
			e.transition(PhaseAnalyzing)
		}
		return SoundNone

	case PhaseAnalyzing:
		return e.tickAnalyzing(g)

	case PhaseDefragmenting:
		return e.tickDefragmenting(g, st)

	case PhaseFinished:
		return SoundNone
	}
	return SoundNone
}

// tickAnalyzing sweeps a read head across the grid without mutating any
// cluster. With ScanRate == 0 the phase lasts exactly one tick.
func (e *Engine) tickAnalyzing(g *Grid) SoundEvent {
	if e.scanRate <= 0 {
		e.transition(PhaseDefragmenting)
		return SoundNone
	}

	pos := e.tickInPhase * e.scanRate
	if pos > g.Len()-1 {
		pos = g.Len() - 1
	}
	e.scanPos = pos

	if e.tickInPhase > g.Len()/e.scanRate+10 {
		e.transition(PhaseDefragmenting)
		return SoundNone
	}
	if e.tickInPhase%3 == 0 {
		return SoundSeek
	}
	return SoundNone
}

func (e *Engine) tickDefragmenting(g *Grid, st *Stats) SoundEvent {
	if e.move != nil {
		return e.advanceMove(g, st)
	}

	if st.MovedClusters >= st.TotalToMove {
		// Empty workload, or the final move resolved on the previous tick.
		e.transition(PhaseFinished)
		return SoundNone
	}

	src, ok := g.RandomIndex(StatePending, e.rng)
	if !ok {
		// Defensive: TotalToMove accounting says work remains but no Pending
		// cluster exists. Treat as a stall rather than corrupting state.
		st.StallTicks++
		return SoundNone
	}
	dst, ok := g.RandomIndex(StateUnused, e.rng)
	if !ok {
		// No free space. A legitimate stall: keep retrying, the grid must
		// not change and the phase must not advance.
		st.StallTicks++
		return SoundNone
	}

	g.Set(src, StateReading)
	g.Set(dst, StateWriting)
	e.move = &pendingMove{src: src, dst: dst, ticksLeft: e.holdTicks}
	return SoundSeek
}

// advanceMove counts down the animation hold and resolves the in-flight move
// when it expires: source becomes Unused, destination becomes Used.
func (e *Engine) advanceMove(g *Grid, st *Stats) SoundEvent {
	e.move.ticksLeft--
	if e.move.ticksLeft > 0 {
		return SoundRead
	}

	g.Set(e.move.src, StateUnused)
	g.Set(e.move.dst, StateUsed)
	e.move = nil

	st.MovedClusters++
	if st.MovedClusters > st.TotalToMove {
		// A logic bug, not a runtime condition: the accounting that feeds the
		// Finished transition is broken, so fail loudly with the state.
		panic(fmt.Sprintf("defrag invariant violated: moved %d > total %d (pending=%d)",
			st.MovedClusters, st.TotalToMove, g.Count(StatePending)))
	}
	if st.MovedClusters == st.TotalToMove {
		e.transition(PhaseFinished)
	}
	return SoundWrite
}
