package simulator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/retrodisk/defragsim/audio"
)

// Command is a user control applied between ticks
type Command int

const (
	CommandNone Command = iota
	CommandQuit
	CommandToggleSound
	CommandRestart
	CommandTogglePause
	CommandToggleDemo
)

// finishWaitTicks is how long a finished non-demo session keeps accepting
// ticks before reporting Done, so the renderer can show the final frame.
const finishWaitTicks = 50

// Snapshot is an immutable, render-ready view of the simulation taken at a
// tick boundary. Rendering is expected to be a pure function of it.
type Snapshot struct {
	Phase     Phase          `json:"phase"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Cells     []ClusterState `json:"cells"`
	Stats     Stats          `json:"stats"`
	ScanPos   int            `json:"scanPos"` // analyzer read head, -1 when idle
	Status    string         `json:"status"`
	Drive     DriveConfig    `json:"drive"`
	Paused    bool           `json:"paused"`
	SoundOn   bool           `json:"soundOn"`
	ElapsedMs int64          `json:"elapsedMs"`
}

// Session owns the cluster grid, the engine, the statistics and the audio
// player. It is driven by a single external tick loop; every mutation happens
// inside Advance or HandleCommand, so a Snapshot taken between calls can
// never observe a half-mutated grid.
type Session struct {
	cfg    SimConfig
	drive  DriveConfig
	grid   *Grid
	engine *Engine
	stats  Stats
	player *audio.Player
	rng    *rand.Rand

	paused        bool
	quit          bool
	finishedTicks int
	currentFile   string
	status        string
}

// NewSession validates the configuration, initializes the grid and takes
// ownership of the audio player (which may be nil for silent runs).
func NewSession(cfg SimConfig, player *audio.Player) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	drive, _ := DriveByLetter(cfg.Drive)

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Session{
		cfg:    cfg,
		drive:  drive,
		player: player,
		rng:    rand.New(rand.NewSource(seed)),
	}
	if player != nil {
		player.SetRate(drive.PlaybackRate())
		player.SetEnabled(cfg.SoundEnabled)
	}
	s.reset()
	return s, nil
}

// reset rebuilds grid, stats and engine for a fresh run
func (s *Session) reset() {
	s.grid = NewGrid(s.cfg.Width, s.cfg.Height)
	s.grid.Initialize(s.cfg.FillPercent, s.cfg.FragmentedPercent, s.cfg.BadPercent, s.cfg.UnmovablePercent, s.rng)
	s.stats = Stats{StartTime: time.Now()}
	s.engine = NewEngine(s.cfg, s.rng)
	s.paused = false
	s.finishedTicks = 0
	s.currentFile = ""
	s.status = PhaseInitializing.StatusLine()
}

// Advance runs one simulation tick: the engine mutates the grid and stats,
// and the resulting sound event (if any) is forwarded to the player. The
// player submits-and-returns, so a slow or absent audio device can never
// desynchronize the state machine.
func (s *Session) Advance() {
	if s.paused || s.quit {
		return
	}

	ev := s.engine.Tick(s.grid, &s.stats)
	s.updateStatus(ev)
	if ev != SoundNone && s.player != nil {
		s.player.Play(soundKind(ev))
	}

	if s.engine.Phase() == PhaseFinished {
		s.finishedTicks++
		if s.cfg.DemoMode && s.finishedTicks > finishWaitTicks/2 {
			s.reset()
		}
	}
}

// updateStatus maintains the human-readable status line, including the DOS
// filename ticker while a move is in flight.
func (s *Session) updateStatus(ev SoundEvent) {
	switch ev {
	case SoundSeek:
		if s.engine.Phase() == PhaseDefragmenting {
			s.currentFile = dosFileNames[s.rng.Intn(len(dosFileNames))]
			s.status = fmt.Sprintf("Reading %s...", s.currentFile)
		}
	case SoundRead:
		s.status = fmt.Sprintf("Reading %s...", s.currentFile)
	case SoundWrite:
		s.status = fmt.Sprintf("Writing %s...", s.currentFile)
	default:
		if s.engine.Phase() != PhaseDefragmenting {
			s.status = s.engine.Phase().StatusLine()
		}
	}
	if s.paused {
		s.status = "Paused"
	}
}

// HandleCommand applies a user command between ticks
func (s *Session) HandleCommand(cmd Command) {
	switch cmd {
	case CommandQuit:
		s.quit = true
	case CommandToggleSound:
		if s.player != nil {
			s.player.Toggle()
		}
	case CommandRestart:
		s.reset()
	case CommandTogglePause:
		if p := s.engine.Phase(); p == PhaseAnalyzing || p == PhaseDefragmenting {
			s.paused = !s.paused
		}
	case CommandToggleDemo:
		s.cfg.DemoMode = !s.cfg.DemoMode
	}
}

// Snapshot returns an immutable view of the current state. The cell slice is
// a copy; mutating it cannot affect the session.
func (s *Session) Snapshot() Snapshot {
	soundOn := false
	if s.player != nil {
		soundOn = s.player.Enabled()
	}
	return Snapshot{
		Phase:     s.engine.Phase(),
		Width:     s.grid.Width(),
		Height:    s.grid.Height(),
		Cells:     s.grid.Cells(),
		Stats:     s.stats,
		ScanPos:   s.engine.ScanPos(),
		Status:    s.status,
		Drive:     s.drive,
		Paused:    s.paused,
		SoundOn:   soundOn,
		ElapsedMs: s.stats.Elapsed().Milliseconds(),
	}
}

// Phase returns the current engine phase
func (s *Session) Phase() Phase { return s.engine.Phase() }

// Config returns the session configuration
func (s *Session) Config() SimConfig { return s.cfg }

// TickDuration returns the configured wall time per tick
func (s *Session) TickDuration() time.Duration { return s.cfg.Speed.TickDuration() }

// Done reports whether the session should stop: the user quit, or a non-demo
// run has lingered on the final frame long enough.
func (s *Session) Done() bool {
	if s.quit {
		return true
	}
	return !s.cfg.DemoMode && s.engine.Phase() == PhaseFinished && s.finishedTicks > finishWaitTicks
}

// Close releases the audio device
func (s *Session) Close() {
	if s.player != nil {
		s.player.Close()
	}
}

func soundKind(ev SoundEvent) audio.Kind {
	switch ev {
	case SoundSeek:
		return audio.KindSeek
	case SoundRead:
		return audio.KindRead
	case SoundWrite:
		return audio.KindWrite
	default:
		return audio.KindIdle
	}
}
