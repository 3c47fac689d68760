package simulator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// engineConfig returns a minimal config for driving the engine directly:
// single-tick initialize and analyze phases, two-tick animation hold.
func engineConfig() SimConfig {
	cfg := DefaultConfig()
	cfg.Width = 4
	cfg.Height = 4
	cfg.InitTicks = 1
	cfg.ScanRate = 0
	cfg.Speed = SpeedNormal
	return cfg
}

func countAll(g *Grid) int {
	total := 0
	for _, n := range g.Counts() {
		total += n
	}
	return total
}

// TestEngine_PhaseOrder verifies the strict phase progression:
// Initializing -> Analyzing -> Defragmenting -> Finished, each of the first
// two lasting exactly one tick in the default configuration.
func TestEngine_PhaseOrder(t *testing.T) {
	cfg := engineConfig()
	rng := rand.New(rand.NewSource(1))
	g := NewGrid(4, 4)
	g.Initialize(50, 50, 0, 0, rng)
	e := NewEngine(cfg, rng)
	st := &Stats{}

	require.Equal(t, PhaseInitializing, e.Phase())

	e.Tick(g, st)
	require.Equal(t, PhaseAnalyzing, e.Phase())
	require.Equal(t, g.Count(StatePending), st.TotalToMove, "workload fixed when Initializing completes")

	e.Tick(g, st)
	require.Equal(t, PhaseDefragmenting, e.Phase())

	prev := e.Phase()
	for i := 0; i < 10000 && e.Phase() != PhaseFinished; i++ {
		e.Tick(g, st)
		require.GreaterOrEqual(t, e.Phase(), prev, "phases never move backwards")
		prev = e.Phase()
	}
	require.Equal(t, PhaseFinished, e.Phase(), "must finish in finite ticks when free space exists")
}

// TestEngine_MoveConservation runs the fixed scenario from a seeded 4x4 grid
// at 50% fill with no scenery clusters: once finished, no Pending clusters
// remain and every initially-occupied cluster ended up Used.
func TestEngine_MoveConservation(t *testing.T) {
	cfg := engineConfig()
	rng := rand.New(rand.NewSource(99))
	g := NewGrid(4, 4)
	g.Initialize(50, 50, 0, 0, rng)

	used0 := g.Count(StateUsed)
	pending0 := g.Count(StatePending)
	unused0 := g.Count(StateUnused)

	e := NewEngine(cfg, rng)
	st := &Stats{}
	for i := 0; i < 10000 && e.Phase() != PhaseFinished; i++ {
		e.Tick(g, st)
	}

	require.Equal(t, PhaseFinished, e.Phase())
	require.Equal(t, 0, g.Count(StatePending))
	require.Equal(t, 0, g.Count(StateReading))
	require.Equal(t, 0, g.Count(StateWriting))
	require.Equal(t, used0+pending0, g.Count(StateUsed), "every move conserves data clusters")
	require.Equal(t, unused0, g.Count(StateUnused), "every move conserves free space")
	require.Equal(t, pending0, st.MovedClusters)
}

// TestEngine_InvariantsEveryTick checks, at every tick boundary, that state
// counts sum to the grid size and that the move counter is monotone and
// bounded by the workload.
func TestEngine_InvariantsEveryTick(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		cfg := engineConfig()
		cfg.Width, cfg.Height = 10, 6
		rng := rand.New(rand.NewSource(seed))
		g := NewGrid(10, 6)
		g.Initialize(65, 90, 2, 1, rng)
		e := NewEngine(cfg, rng)
		st := &Stats{}

		prevMoved := 0
		for i := 0; i < 5000 && e.Phase() != PhaseFinished; i++ {
			e.Tick(g, st)
			require.Equal(t, 60, countAll(g), "seed=%d tick=%d", seed, i)
			require.GreaterOrEqual(t, st.MovedClusters, prevMoved)
			require.LessOrEqual(t, st.MovedClusters, st.TotalToMove)
			prevMoved = st.MovedClusters
		}
		require.Equal(t, PhaseFinished, e.Phase(), "seed=%d", seed)
		require.Equal(t, st.TotalToMove, st.MovedClusters, "equality is what finishes the run")
	}
}

// TestEngine_SceneryNeverSelected runs full cycles over several seeds and
// verifies Bad and Unmovable clusters stay exactly where they started.
func TestEngine_SceneryNeverSelected(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		cfg := engineConfig()
		cfg.Width, cfg.Height = 12, 8
		rng := rand.New(rand.NewSource(seed))
		g := NewGrid(12, 8)
		g.Initialize(65, 90, 5, 3, rng)

		scenery := make(map[int]ClusterState)
		for i := 0; i < g.Len(); i++ {
			if s := g.Get(i); s == StateBad || s == StateUnmovable {
				scenery[i] = s
			}
		}

		e := NewEngine(cfg, rng)
		st := &Stats{}
		for i := 0; i < 10000 && e.Phase() != PhaseFinished; i++ {
			e.Tick(g, st)
			for idx, s := range scenery {
				require.Equal(t, s, g.Get(idx), "seed=%d: scenery cluster %d was touched", seed, idx)
			}
		}
	}
}

// TestEngine_StallSafety pins the grid in the worst shape: fragmented with
// zero free space. The engine must stay in Defragmenting indefinitely,
// leaving the grid untouched, without crashing.
func TestEngine_StallSafety(t *testing.T) {
	cfg := engineConfig()
	rng := rand.New(rand.NewSource(5))
	g := NewGrid(4, 4)
	for i := 0; i < g.Len(); i++ {
		g.Set(i, StateUsed)
	}
	g.Set(3, StatePending)
	g.Set(7, StatePending)
	g.Set(11, StatePending)

	e := NewEngine(cfg, rng)
	st := &Stats{}
	e.Tick(g, st) // Initializing -> Analyzing
	e.Tick(g, st) // Analyzing -> Defragmenting
	require.Equal(t, PhaseDefragmenting, e.Phase())
	require.Equal(t, 3, st.TotalToMove)

	before := g.Cells()
	for i := 0; i < 1000; i++ {
		ev := e.Tick(g, st)
		require.Equal(t, SoundNone, ev, "a stalled tick is silent")
	}
	require.Equal(t, PhaseDefragmenting, e.Phase(), "stall must not advance the phase")
	require.Equal(t, before, g.Cells(), "stall must not mutate the grid")
	require.Equal(t, 0, st.MovedClusters)
	require.Equal(t, 1000, st.StallTicks)
}

// TestEngine_EmptyWorkload finishes immediately when nothing is fragmented.
func TestEngine_EmptyWorkload(t *testing.T) {
	cfg := engineConfig()
	rng := rand.New(rand.NewSource(2))
	g := NewGrid(4, 4) // all Unused
	e := NewEngine(cfg, rng)
	st := &Stats{}

	e.Tick(g, st)
	e.Tick(g, st)
	e.Tick(g, st)
	require.Equal(t, PhaseFinished, e.Phase())
	require.Equal(t, 0, st.TotalToMove)
	require.Equal(t, 0, st.MovedClusters)

	// Finished is terminal: further ticks are silent no-ops.
	before := g.Cells()
	for i := 0; i < 10; i++ {
		require.Equal(t, SoundNone, e.Tick(g, st))
	}
	require.Equal(t, PhaseFinished, e.Phase())
	require.Equal(t, before, g.Cells())
}

// TestEngine_SoundOrdering verifies the per-move sound sequence: a Seek opens
// each move, Reads fill the animation hold, and exactly one Write closes it.
func TestEngine_SoundOrdering(t *testing.T) {
	cfg := engineConfig()
	rng := rand.New(rand.NewSource(11))
	g := NewGrid(6, 6)
	g.Initialize(50, 100, 0, 0, rng)
	e := NewEngine(cfg, rng)
	st := &Stats{}

	writes := 0
	inMove := false
	for i := 0; i < 10000 && e.Phase() != PhaseFinished; i++ {
		switch e.Tick(g, st) {
		case SoundSeek:
			require.False(t, inMove, "a Seek must not interrupt an in-flight move")
			inMove = true
		case SoundRead:
			require.True(t, inMove, "Read only occurs inside a move")
		case SoundWrite:
			require.True(t, inMove, "Write resolves a move opened by a Seek")
			inMove = false
			writes++
		}
	}
	require.Equal(t, st.MovedClusters, writes, "exactly one Write per completed move")
}

// TestEngine_AnimationHold verifies the two-step move: Reading/Writing
// markers persist for the configured hold and then resolve together.
func TestEngine_AnimationHold(t *testing.T) {
	cfg := engineConfig()
	cfg.Speed = SpeedSlow // 3 hold ticks
	rng := rand.New(rand.NewSource(4))
	g := NewGrid(4, 4)
	g.Set(0, StatePending)
	e := NewEngine(cfg, rng)
	st := &Stats{}

	e.Tick(g, st)
	e.Tick(g, st)
	require.Equal(t, SoundSeek, e.Tick(g, st))
	require.Equal(t, 1, g.Count(StateReading))
	require.Equal(t, 1, g.Count(StateWriting))

	require.Equal(t, SoundRead, e.Tick(g, st))
	require.Equal(t, SoundRead, e.Tick(g, st))
	require.Equal(t, 1, g.Count(StateReading), "markers persist through the hold")

	require.Equal(t, SoundWrite, e.Tick(g, st))
	require.Equal(t, 0, g.Count(StateReading))
	require.Equal(t, 0, g.Count(StateWriting))
	require.Equal(t, 1, st.MovedClusters)
	require.Equal(t, PhaseFinished, e.Phase())
}

// TestEngine_AnalyzingSweep covers the multi-tick analyze pass: the read
// head advances across the grid and the phase ends on schedule.
func TestEngine_AnalyzingSweep(t *testing.T) {
	cfg := engineConfig()
	cfg.Width, cfg.Height = 10, 10
	cfg.ScanRate = 5
	rng := rand.New(rand.NewSource(6))
	g := NewGrid(10, 10)
	g.Initialize(65, 90, 0, 0, rng)
	e := NewEngine(cfg, rng)
	st := &Stats{}

	e.Tick(g, st)
	require.Equal(t, PhaseAnalyzing, e.Phase())

	seeks := 0
	before := g.Cells()
	for i := 0; i < 1000 && e.Phase() == PhaseAnalyzing; i++ {
		if e.Tick(g, st) == SoundSeek {
			seeks++
		}
		if e.Phase() == PhaseAnalyzing {
			require.GreaterOrEqual(t, e.ScanPos(), 0)
			require.Less(t, e.ScanPos(), g.Len())
		}
	}
	require.Equal(t, PhaseDefragmenting, e.Phase())
	require.Equal(t, -1, e.ScanPos(), "head parks when the sweep ends")
	require.Greater(t, seeks, 0, "the sweep is audible")
	require.Equal(t, before, g.Cells(), "analyzing never mutates clusters")
}
