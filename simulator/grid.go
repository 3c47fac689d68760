package simulator

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// ClusterState is the content of one grid cell
type ClusterState int

const (
	StateUnused    ClusterState = iota // free space
	StateUsed                          // already defragmented data
	StatePending                       // fragmented data still to be moved
	StateBad                           // defective cluster, permanent scenery
	StateUnmovable                     // system cluster, permanent scenery
	StateReading                       // transient: source of an in-flight move
	StateWriting                       // transient: destination of an in-flight move
)

// String returns the string representation of ClusterState
func (s ClusterState) String() string {
	switch s {
	case StateUnused:
		return "unused"
	case StateUsed:
		return "used"
	case StatePending:
		return "pending"
	case StateBad:
		return "bad"
	case StateUnmovable:
		return "unmovable"
	case StateReading:
		return "reading"
	case StateWriting:
		return "writing"
	default:
		return "unknown"
	}
}

// allStates is the complete enumeration, used by counting and validation
var allStates = []ClusterState{
	StateUnused, StateUsed, StatePending, StateBad,
	StateUnmovable, StateReading, StateWriting,
}

// Grid is the fixed-size 2D collection of clusters. Cells are addressed by
// flat index in row-major order; (x, y) maps to y*width+x.
type Grid struct {
	width  int
	height int
	cells  []ClusterState
}

// NewGrid creates an all-Unused grid of the given dimensions
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]ClusterState, width*height),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Len returns the total cluster count (width * height)
func (g *Grid) Len() int { return len(g.cells) }

// Get returns the state of the cluster at flat index i
func (g *Grid) Get(i int) ClusterState { return g.cells[i] }

// Set replaces the state of the cluster at flat index i
func (g *Grid) Set(i int, s ClusterState) { g.cells[i] = s }

// At returns the state of the cluster at (x, y)
func (g *Grid) At(x, y int) ClusterState { return g.cells[y*g.width+x] }

// Count returns the number of clusters currently in the given state
func (g *Grid) Count(s ClusterState) int {
	n := 0
	for _, c := range g.cells {
		if c == s {
			n++
		}
	}
	return n
}

// Counts returns the full per-state histogram
func (g *Grid) Counts() map[ClusterState]int {
	counts := make(map[ClusterState]int, len(allStates))
	for _, s := range allStates {
		counts[s] = 0
	}
	for _, c := range g.cells {
		counts[c]++
	}
	return counts
}

// RandomIndex picks a uniformly random cluster currently in the given state.
// It returns false when no such cluster exists; callers must treat that as
// "no candidate this tick", not as an error.
func (g *Grid) RandomIndex(s ClusterState, rng *rand.Rand) (int, bool) {
	// Reservoir sample of size one over matching cells. Single pass, no
	// allocation, uniform for any count.
	picked := -1
	seen := 0
	for i, c := range g.cells {
		if c != s {
			continue
		}
		seen++
		if rng.Intn(seen) == 0 {
			picked = i
		}
	}
	if picked < 0 {
		return 0, false
	}
	return picked, true
}

// Cells returns a copy of the cluster array, suitable for snapshots
func (g *Grid) Cells() []ClusterState {
	out := make([]ClusterState, len(g.cells))
	copy(out, g.cells)
	return out
}

// FragmentationPercent returns the fraction of data clusters still fragmented
func (g *Grid) FragmentationPercent() float64 {
	pending := g.Count(StatePending)
	total := pending + g.Count(StateUsed)
	if total == 0 {
		return 0
	}
	return float64(pending) / float64(total) * 100.0
}

// Initialize fills the grid with a weighted random draw per cell:
// badPercent/unmovablePercent of cells become permanent scenery, fillPercent
// of cells hold data, and of those fragmentedPercent start as Pending with
// the rest already Used. Everything else is Unused.
//
// The initializer guarantees at least one Unused cluster whenever any Pending
// cluster exists; without free space the move algorithm would stall forever.
// When the random draw leaves no free space, the highest-index movable
// cluster is deterministically flipped to Unused.
func (g *Grid) Initialize(fillPercent, fragmentedPercent, badPercent, unmovablePercent float64, rng *rand.Rand) {
	pBad := badPercent / 100.0
	pUnmovable := unmovablePercent / 100.0
	pFill := fillPercent / 100.0
	pFragmented := fragmentedPercent / 100.0

	for i := range g.cells {
		r := rng.Float64()
		switch {
		case r < pBad:
			g.cells[i] = StateBad
		case r < pBad+pUnmovable:
			g.cells[i] = StateUnmovable
		case r < pBad+pUnmovable+(1-pBad-pUnmovable)*pFill:
			if rng.Float64() < pFragmented {
				g.cells[i] = StatePending
			} else {
				g.cells[i] = StateUsed
			}
		default:
			g.cells[i] = StateUnused
		}
	}

	// The very first cluster of a period disk holds the boot sector.
	if unmovablePercent > 0 && len(g.cells) > 0 {
		g.cells[0] = StateUnmovable
	}

	g.ensureFreeSpace()
}

// ensureFreeSpace enforces the "Pending implies Unused" invariant after the
// randomized fill. Used clusters are sacrificed before Pending ones so the
// top-up disturbs the workload as little as possible.
func (g *Grid) ensureFreeSpace() {
	if g.Count(StatePending) == 0 || g.Count(StateUnused) > 0 {
		return
	}
	for i := len(g.cells) - 1; i >= 0; i-- {
		if g.cells[i] == StateUsed {
			g.cells[i] = StateUnused
			return
		}
	}
	for i := len(g.cells) - 1; i >= 0; i-- {
		if g.cells[i] == StatePending {
			g.cells[i] = StateUnused
			return
		}
	}
}

// MarshalJSON implements json.Marshaler for ClusterState
func (s ClusterState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler for ClusterState
func (s *ClusterState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	for _, candidate := range allStates {
		if candidate.String() == str {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("invalid cluster state: %s", str)
}
