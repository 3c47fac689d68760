package audio

import "math"

const (
	SampleRate   = 44100
	ChannelCount = 2
	BitDepth     = 0 // 32-bit float (oto.FormatFloat32LE)
)

// Kind identifies a mechanical sound category.
type Kind int

const (
	KindIdle  Kind = iota // background spindle hum
	KindSeek              // head actuator click burst
	KindRead              // low-intensity platter scratch
	KindWrite             // heavier scratch with an actuator thump
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindSeek:
		return "seek"
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Synthesize generates the stereo float32 sample buffer for a sound kind at
// the given playback rate. Higher rates make shorter, faster sounds (a faster
// drive). Synthesis is a pure function: the noise source is seeded per kind,
// so the same (kind, rate) pair always yields an identical buffer.
func Synthesize(kind Kind, rate float64) []byte {
	rate = clampRate(rate)
	switch kind {
	case KindSeek:
		return genSeek(rate)
	case KindRead:
		return genRead(rate)
	case KindWrite:
		return genWrite(rate)
	case KindIdle:
		return genIdle(rate)
	}
	return nil
}

func clampRate(rate float64) float64 {
	if rate < 0.25 {
		return 0.25
	}
	if rate > 4.0 {
		return 4.0
	}
	return rate
}

// genSeek: three sharp actuator clicks, each an exponentially decaying burst
// of highpassed noise with an impulse transient.
func genSeek(rate float64) []byte {
	n := int(0.08 / rate * SampleRate)
	buf := sampleBuf(n)
	seed := uint64(0xD15C5EEC)
	lp := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		burst := math.Mod(p*3, 1.0)
		env := math.Exp(-burst * 26)
		white := noise(&seed)
		lp = lp*0.72 + white*0.28
		s := (white - lp) * env * 0.85
		if burst < 0.008 {
			s += 0.9 // impulse at the start of each click
		}
		writeStereo(buf, i, softClip(s))
	}
	return buf
}

// genRead: amplitude-modulated pseudo-noise at a fixed modulation rate, the
// regular low-intensity scratching of a platter read.
func genRead(rate float64) []byte {
	n := int(0.12 / rate * SampleRate)
	buf := sampleBuf(n)
	seed := uint64(0x4EAD0001)
	lp := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		p := float64(i) / float64(n)
		env := envelope(p, 0.05, 0.15, 0.8, 0.2)
		lp = lp*0.82 + noise(&seed)*0.18
		am := 0.55 + 0.45*math.Sin(2*math.Pi*90*rate*t)
		writeStereo(buf, i, softClip(lp*am*env*0.4))
	}
	return buf
}

// genWrite: same family as read but louder, with a low actuator thump
// reflecting the heavier mechanical action.
func genWrite(rate float64) []byte {
	n := int(0.12 / rate * SampleRate)
	buf := sampleBuf(n)
	seed := uint64(0x3717E000)
	lp := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		p := float64(i) / float64(n)
		env := envelope(p, 0.03, 0.12, 0.85, 0.18)
		lp = lp*0.8 + noise(&seed)*0.2
		am := 0.5 + 0.5*math.Sin(2*math.Pi*110*rate*t)
		thump := math.Sin(2*math.Pi*55*t) * math.Exp(-p*9) * 0.45
		writeStereo(buf, i, softClip((lp*am*0.65+thump)*env))
	}
	return buf
}

// genIdle: half a second of low-amplitude spindle hum, loopable back to back.
// Harmonic frequencies are rounded to multiples of 2 Hz so a 0.5s buffer
// closes cleanly on itself.
func genIdle(rate float64) []byte {
	n := SampleRate / 2
	buf := sampleBuf(n)
	seed := uint64(0x1D7E0000)
	base := 2 * math.Round((48+12*rate)/2)
	lp := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		hum := math.Sin(2*math.Pi*base*t)*0.5 + math.Sin(2*math.Pi*base*2*t)*0.25
		lp = lp*0.95 + noise(&seed)*0.05
		writeStereo(buf, i, softClip(hum*0.14+lp*0.05))
	}
	return buf
}

// ---- synthesis helpers ----------------------------------------------------

// sampleBuf allocates a stereo float32 buffer for n samples.
func sampleBuf(n int) []byte { return make([]byte, n*8) }

// writeStereo writes a [-1,1] sample as float32 LE to both channels at frame i.
func writeStereo(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	buf[i*8] = byte(v)
	buf[i*8+1] = byte(v >> 8)
	buf[i*8+2] = byte(v >> 16)
	buf[i*8+3] = byte(v >> 24)
	buf[i*8+4] = byte(v)
	buf[i*8+5] = byte(v >> 8)
	buf[i*8+6] = byte(v >> 16)
	buf[i*8+7] = byte(v >> 24)
}

// softClip applies gentle tanh-like saturation instead of hard clipping.
func softClip(x float64) float64 {
	if x > 1.0 {
		return 1.0 - 0.5/x
	}
	if x < -1.0 {
		return -1.0 + 0.5/(-x)
	}
	return x - x*x*x/3.0
}

// envelope returns an ADSR envelope value at normalized progress [0,1];
// attack, decay and release are fractions of the total duration.
func envelope(progress, attack, decay, sustain, release float64) float64 {
	switch {
	case progress < attack:
		return progress / attack
	case progress < attack+decay:
		return 1.0 - (progress-attack)/decay*(1.0-sustain)
	case progress < 1.0-release:
		return sustain
	default:
		return sustain * (1.0 - (progress-(1.0-release))/release)
	}
}

// noise advances an LCG seed and returns a sample in [-1,1].
func noise(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>33)-int64(1<<30)) / float64(1<<30)
}
