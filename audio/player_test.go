package audio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureDevice records playback calls instead of producing sound.
type captureDevice struct {
	mu     sync.Mutex
	plays  []playCall
	loops  int
	stops  int
	closed bool
}

type playCall struct {
	bytes  int
	volume float64
}

func (d *captureDevice) Play(samples []byte, volume float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.plays = append(d.plays, playCall{bytes: len(samples), volume: volume})
}

func (d *captureDevice) Loop(samples []byte, volume float64) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loops++
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stops++
	}
}

func (d *captureDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *captureDevice) snapshot() (plays []playCall, loops, stops int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]playCall(nil), d.plays...), d.loops, d.stops
}

func TestPlayer_EnabledStartsIdleLoop(t *testing.T) {
	dev := &captureDevice{}
	p := NewPlayerWithDevice(dev, true)
	require.True(t, p.Enabled())

	_, loops, stops := dev.snapshot()
	require.Equal(t, 1, loops, "enabling starts the background hum")
	require.Equal(t, 0, stops)
}

func TestPlayer_DisabledIsSilent(t *testing.T) {
	dev := &captureDevice{}
	p := NewPlayerWithDevice(dev, false)
	require.False(t, p.Enabled())

	p.Play(KindSeek)
	p.Play(KindWrite)

	plays, loops, _ := dev.snapshot()
	require.Empty(t, plays, "a disabled player never touches the device")
	require.Equal(t, 0, loops)
}

func TestPlayer_PlaySubmitsWithVolume(t *testing.T) {
	dev := &captureDevice{}
	p := NewPlayerWithDevice(dev, true)

	p.Play(KindSeek)
	p.Play(KindRead)
	p.Play(KindWrite)

	plays, _, _ := dev.snapshot()
	require.Len(t, plays, 3)
	require.Equal(t, 0.5, plays[0].volume)
	require.Equal(t, 0.4, plays[1].volume)
	require.Equal(t, 0.55, plays[2].volume)
	for _, pc := range plays {
		require.Greater(t, pc.bytes, 0)
		require.Equal(t, 0, pc.bytes%8)
	}
}

func TestPlayer_ToggleManagesIdleLoop(t *testing.T) {
	dev := &captureDevice{}
	p := NewPlayerWithDevice(dev, true)

	require.False(t, p.Toggle())
	_, loops, stops := dev.snapshot()
	require.Equal(t, 1, loops)
	require.Equal(t, 1, stops, "disabling stops the hum")

	require.True(t, p.Toggle())
	_, loops, stops = dev.snapshot()
	require.Equal(t, 2, loops, "re-enabling restarts the hum")
	require.Equal(t, 1, stops)
}

func TestPlayer_SetRateRestartsIdleLoop(t *testing.T) {
	dev := &captureDevice{}
	p := NewPlayerWithDevice(dev, true)

	p.SetRate(2.0)
	_, loops, stops := dev.snapshot()
	require.Equal(t, 2, loops, "rate change re-pitches the hum")
	require.Equal(t, 1, stops)
}

func TestPlayer_NilDeviceIsSafe(t *testing.T) {
	p := NewPlayerWithDevice(nil, true)
	require.False(t, p.Enabled(), "no device means no sound regardless of the flag")

	p.Play(KindSeek)
	p.SetRate(3.0)
	require.False(t, p.Toggle())
	p.Close()
}

func TestPlayer_CloseStopsEverything(t *testing.T) {
	dev := &captureDevice{}
	p := NewPlayerWithDevice(dev, true)
	p.Close()

	_, _, stops := dev.snapshot()
	require.Equal(t, 1, stops)
	dev.mu.Lock()
	closed := dev.closed
	dev.mu.Unlock()
	require.True(t, closed)

	p.Play(KindWrite)
	plays, _, _ := dev.snapshot()
	require.Empty(t, plays, "playback after Close is a no-op")
	require.False(t, p.Enabled())
}
