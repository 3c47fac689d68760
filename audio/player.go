package audio

import (
	"log"
	"sync"
)

// Player owns the live audio output and gates all playback behind the
// user-controlled enabled flag. Play submits-and-returns: the simulation
// thread never waits on the device, and in-flight buffers belong entirely to
// the device goroutines.
type Player struct {
	mu       sync.Mutex
	device   Device
	enabled  bool
	rate     float64
	stopIdle func()
}

// NewPlayer opens the default output device. A device-open failure is not
// fatal: the player degrades to permanent silence after logging one warning,
// and the simulation carries on.
func NewPlayer(enabled bool) *Player {
	p := &Player{rate: 1.0}
	dev, err := OpenDevice()
	if err != nil {
		log.Printf("audio: output device unavailable, sound disabled: %v", err)
		return p
	}
	p.device = dev
	p.SetEnabled(enabled)
	return p
}

// NewPlayerWithDevice wires an explicit device. Used by tests and headless
// runs; dev may be nil for a fully silent player.
func NewPlayerWithDevice(dev Device, enabled bool) *Player {
	p := &Player{device: dev, rate: 1.0}
	p.SetEnabled(enabled)
	return p
}

// Enabled reports whether playback is on
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled && p.device != nil
}

// SetEnabled turns playback on or off, managing the background hum loop
func (p *Player) SetEnabled(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = on && p.device != nil
	p.syncIdleLocked()
}

// Toggle flips the enabled flag and returns the new value
func (p *Player) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = !p.enabled && p.device != nil
	p.syncIdleLocked()
	return p.enabled
}

// SetRate sets the playback rate (derived from drive IOPS) for all
// subsequent sounds, restarting the hum loop at the new pitch.
func (p *Player) SetRate(rate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = clampRate(rate)
	if p.stopIdle != nil {
		p.stopIdle()
		p.stopIdle = nil
	}
	p.syncIdleLocked()
}

// Play synthesizes and submits the sound for kind. No-op when disabled or
// when the device could not be opened.
func (p *Player) Play(kind Kind) {
	p.mu.Lock()
	enabled, dev, rate := p.enabled, p.device, p.rate
	p.mu.Unlock()
	if !enabled || dev == nil {
		return
	}
	dev.Play(Synthesize(kind, rate), volumeFor(kind))
}

// Close stops the hum loop and releases the device
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = false
	p.syncIdleLocked()
	if p.device != nil {
		if err := p.device.Close(); err != nil {
			log.Printf("audio: closing output device: %v", err)
		}
		p.device = nil
	}
}

// syncIdleLocked keeps the background hum loop consistent with the enabled
// flag. Callers must hold p.mu.
func (p *Player) syncIdleLocked() {
	if p.enabled && p.device != nil && p.stopIdle == nil {
		p.stopIdle = p.device.Loop(Synthesize(KindIdle, p.rate), volumeFor(KindIdle))
	}
	if (!p.enabled || p.device == nil) && p.stopIdle != nil {
		p.stopIdle()
		p.stopIdle = nil
	}
}

func volumeFor(kind Kind) float64 {
	switch kind {
	case KindSeek:
		return 0.5
	case KindRead:
		return 0.4
	case KindWrite:
		return 0.55
	case KindIdle:
		return 0.3
	}
	return 0.5
}
