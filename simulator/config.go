package simulator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Speed represents the animation pacing preset
type Speed int

const (
	SpeedNormal Speed = iota // 80ms ticks (default)
	SpeedFast                // 40ms ticks
	SpeedSlow                // 150ms ticks
)

// String returns the string representation of Speed
func (s Speed) String() string {
	switch s {
	case SpeedFast:
		return "fast"
	case SpeedSlow:
		return "slow"
	default:
		return "normal"
	}
}

// ParseSpeed parses a string into Speed
func ParseSpeed(str string) (Speed, error) {
	switch str {
	case "fast":
		return SpeedFast, nil
	case "normal":
		return SpeedNormal, nil
	case "slow":
		return SpeedSlow, nil
	default:
		return SpeedNormal, fmt.Errorf("invalid speed: %s (must be 'fast', 'normal' or 'slow')", str)
	}
}

// MarshalJSON implements json.Marshaler for Speed
func (s Speed) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler for Speed
func (s *Speed) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSpeed(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler for Speed
func (s *Speed) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	parsed, err := ParseSpeed(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// speedSetting maps a Speed preset onto concrete pacing values.
// Exposed as an explicit table rather than magic numbers so that tests can
// parameterize over it.
type speedSetting struct {
	TickDuration time.Duration // wall time between ticks
	HoldTicks    int           // ticks a Reading/Writing pair is held before resolving
}

var speedTable = map[Speed]speedSetting{
	SpeedFast:   {TickDuration: 40 * time.Millisecond, HoldTicks: 1},
	SpeedNormal: {TickDuration: 80 * time.Millisecond, HoldTicks: 2},
	SpeedSlow:   {TickDuration: 150 * time.Millisecond, HoldTicks: 3},
}

// TickDuration returns the wall-clock duration of one simulation tick
func (s Speed) TickDuration() time.Duration {
	return speedTable[s].TickDuration
}

// HoldTicks returns how many ticks an in-flight move is animated before it resolves
func (s Speed) HoldTicks() int {
	return speedTable[s].HoldTicks
}

// DriveConfig describes one simulated disk drive. The IOPS value drives both
// the pacing feel and the audio playback rate.
type DriveConfig struct {
	Letter     string `json:"letter"`
	Name       string `json:"name"`
	CapacityMB int    `json:"capacityMB"`
	IOPS       int    `json:"iops"`
}

// Drives is the set of selectable drives, modeled on period hardware.
var Drives = []DriveConfig{
	{Letter: "C", Name: "Hard Disk (2GB, 2 IOPS)", CapacityMB: 2048, IOPS: 2},
	{Letter: "D", Name: "Hard Disk (1GB, 3 IOPS)", CapacityMB: 1024, IOPS: 3},
	{Letter: "E", Name: "Floppy Disk (512MB, 1 IOPS)", CapacityMB: 512, IOPS: 1},
	{Letter: "F", Name: "SSHD (2GB, 8 IOPS)", CapacityMB: 2048, IOPS: 8},
}

// DriveByLetter looks up a drive by its letter (case-insensitive)
func DriveByLetter(letter string) (DriveConfig, bool) {
	upper := strings.ToUpper(letter)
	for _, d := range Drives {
		if d.Letter == upper {
			return d, true
		}
	}
	return DriveConfig{}, false
}

// DefaultDrive returns drive C
func DefaultDrive() DriveConfig {
	return Drives[0]
}

// Audio playback rate mapping: IOPS in [0,16] maps linearly onto [0.5,4.0].
// Faster drives play the mechanical sounds faster.
const (
	minPlaybackRate = 0.5
	maxPlaybackRate = 4.0
	maxIOPS         = 16
)

// PlaybackRate returns the audio playback rate for this drive
func (d DriveConfig) PlaybackRate() float64 {
	rate := float64(d.IOPS)/maxIOPS*(maxPlaybackRate-minPlaybackRate) + minPlaybackRate
	if rate < minPlaybackRate {
		return minPlaybackRate
	}
	if rate > maxPlaybackRate {
		return maxPlaybackRate
	}
	return rate
}

// SimConfig holds all simulation parameters
type SimConfig struct {
	// Grid geometry
	Width  int `json:"width" yaml:"width"`   // grid width in clusters
	Height int `json:"height" yaml:"height"` // grid height in clusters

	// Initial fill
	FillPercent       float64 `json:"fillPercent" yaml:"fill_percent"`             // occupied fraction of the disk, 0-100
	FragmentedPercent float64 `json:"fragmentedPercent" yaml:"fragmented_percent"` // share of occupied clusters that start fragmented (Pending vs Used), 0-100
	BadPercent        float64 `json:"badPercent" yaml:"bad_percent"`               // share of clusters marked Bad, 0-100 (small)
	UnmovablePercent  float64 `json:"unmovablePercent" yaml:"unmovable_percent"`   // share of clusters marked Unmovable, 0-100 (small)

	// Pacing
	Speed     Speed `json:"speed" yaml:"speed"`          // fast/normal/slow preset (tick duration + hold ticks)
	InitTicks int   `json:"initTicks" yaml:"init_ticks"` // ticks spent in Initializing (minimum 1)
	ScanRate  int   `json:"scanRate" yaml:"scan_rate"`   // clusters swept per Analyzing tick; 0 = single-tick analyze

	// Audio
	SoundEnabled bool   `json:"soundEnabled" yaml:"sound_enabled"` // initial sound flag
	Drive        string `json:"drive" yaml:"drive"`                // drive letter: C, D, E or F

	// Simulation control
	RandomSeed int64 `json:"randomSeed" yaml:"random_seed"` // 0 = use time-based seed
	DemoMode   bool  `json:"demoMode" yaml:"demo_mode"`     // restart automatically after finishing
}

// DefaultConfig returns the classic 78x16 grid at 65% fill
func DefaultConfig() SimConfig {
	return SimConfig{
		Width:             78,
		Height:            16,
		FillPercent:       65.0,
		FragmentedPercent: 90.0,
		BadPercent:        2.0,
		UnmovablePercent:  1.0,
		Speed:             SpeedNormal,
		InitTicks:         1,
		ScanRate:          0,
		SoundEnabled:      false,
		Drive:             "C",
		RandomSeed:        0,
		DemoMode:          false,
	}
}

// Validate checks if configuration values are reasonable
func (c *SimConfig) Validate() error {
	if c.Width < 1 {
		return ErrInvalidConfig("width must be >= 1")
	}
	if c.Height < 1 {
		return ErrInvalidConfig("height must be >= 1")
	}
	if c.FillPercent < 0 || c.FillPercent > 100 {
		return ErrInvalidConfig("fillPercent must be between 0 and 100")
	}
	if c.FragmentedPercent < 0 || c.FragmentedPercent > 100 {
		return ErrInvalidConfig("fragmentedPercent must be between 0 and 100")
	}
	if c.BadPercent < 0 || c.BadPercent > 10 {
		return ErrInvalidConfig("badPercent must be between 0 and 10")
	}
	if c.UnmovablePercent < 0 || c.UnmovablePercent > 10 {
		return ErrInvalidConfig("unmovablePercent must be between 0 and 10")
	}
	if c.InitTicks < 1 {
		return ErrInvalidConfig("initTicks must be >= 1")
	}
	if c.ScanRate < 0 {
		return ErrInvalidConfig("scanRate must be >= 0")
	}
	if _, ok := speedTable[c.Speed]; !ok {
		return ErrInvalidConfig("speed must be fast, normal or slow")
	}
	if _, ok := DriveByLetter(c.Drive); !ok {
		return ErrInvalidConfig(fmt.Sprintf("unknown drive %q (must be C, D, E or F)", c.Drive))
	}
	return nil
}
