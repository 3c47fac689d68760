package audio

import (
	"io"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

// Device is the output sink synthesized buffers are submitted to. The real
// implementation wraps an oto context; tests substitute a capture double so
// the synthesis path can be exercised without audio hardware.
type Device interface {
	// Play submits a one-shot buffer. It must return without waiting for
	// playback to finish.
	Play(samples []byte, volume float64)
	// Loop plays a buffer back to back until the returned stop function is
	// called.
	Loop(samples []byte, volume float64) (stop func())
	// Close releases the output handle.
	Close() error
}

// OpenDevice acquires the process-wide audio output. There is exactly one
// owner: the Player created at session start.
func OpenDevice() (Device, error) {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, BitDepth)
	if err != nil {
		return nil, err
	}
	return &otoDevice{ctx: ctx, ready: ready}, nil
}

type otoDevice struct {
	ctx   *oto.Context
	ready chan struct{}
}

func (d *otoDevice) Play(samples []byte, volume float64) {
	select {
	case <-d.ready:
	default:
		// Device still warming up; dropping the sound is fine, a lost tone
		// must never stall the simulation.
		return
	}
	go func() {
		player := d.ctx.NewPlayer(&bufReader{data: samples})
		player.SetVolume(volume)
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		player.Close()
	}()
}

func (d *otoDevice) Loop(samples []byte, volume float64) func() {
	stopCh := make(chan struct{})
	go func() {
		select {
		case <-d.ready:
		case <-stopCh:
			return
		}
		player := d.ctx.NewPlayer(&loopReader{data: samples})
		player.SetVolume(volume)
		player.Play()
		<-stopCh
		player.Close()
	}()
	return func() { close(stopCh) }
}

func (d *otoDevice) Close() error {
	// oto contexts cannot be torn down; suspending stops all output.
	return d.ctx.Suspend()
}

// bufReader feeds a one-shot sample buffer to an oto player.
type bufReader struct {
	data []byte
	pos  int
}

func (r *bufReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// loopReader replays its buffer forever.
type loopReader struct {
	data []byte
	pos  int
}

func (r *loopReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) {
		c := copy(p[n:], r.data[r.pos:])
		n += c
		r.pos = (r.pos + c) % len(r.data)
	}
	return n, nil
}
