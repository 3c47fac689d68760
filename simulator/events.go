package simulator

// SoundEvent identifies the mechanical sound a tick asks the audio player to
// make. At most one event is produced per tick and events are never queued
// across ticks; a dropped event has no effect on the cluster state machine.
type SoundEvent int

const (
	SoundNone  SoundEvent = iota // silent tick
	SoundSeek                    // head seek at the start of a move
	SoundRead                    // source cluster being read
	SoundWrite                   // destination cluster being written
	SoundIdle                    // background spindle hum
)

func (e SoundEvent) String() string {
	switch e {
	case SoundNone:
		return "none"
	case SoundSeek:
		return "seek"
	case SoundRead:
		return "read"
	case SoundWrite:
		return "write"
	case SoundIdle:
		return "idle"
	default:
		return "unknown"
	}
}
