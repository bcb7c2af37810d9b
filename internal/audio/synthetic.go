package audio

import (
	"math"
	"time"
)

// Synthetic produces speech-like band levels without an audio device. The
// output is a pure function of the elapsed time, so a given offset always
// yields the same frame.
type Synthetic struct {
	bands int
	start time.Time
	now   func() time.Time
}

// NewSynthetic creates a generator with the given band count.
func NewSynthetic(bands int) *Synthetic {
	return &Synthetic{bands: bands, start: time.Now(), now: time.Now}
}

// Bands returns the levels for the current wall-clock offset.
func (s *Synthetic) Bands() []float64 {
	return s.BandsAt(s.now().Sub(s.start))
}

// BandsAt returns the levels t after the generator started. Syllables pulse
// at about 4 Hz inside phrases; between phrases every band is silent.
func (s *Synthetic) BandsAt(t time.Duration) []float64 {
	out := make([]float64, max(s.bands, 0))
	sec := t.Seconds()

	// 2.4s phrase followed by 0.8s of silence
	const phrase, gap = 2.4, 0.8
	if math.Mod(sec, phrase+gap) >= phrase {
		for i := range out {
			out[i] = math.Inf(-1)
		}
		return out
	}

	syllable := 0.5 + 0.5*math.Sin(2*math.Pi*4.1*sec)
	envelope := 0.6 + 0.4*math.Sin(2*math.Pi*0.37*sec)
	for i := range out {
		pos := 0.5
		if len(out) > 1 {
			pos = float64(i) / float64(len(out)-1)
		}
		// two formant bumps that drift slowly
		f1 := math.Exp(-math.Pow((pos-0.25-0.05*math.Sin(sec))/0.12, 2))
		f2 := math.Exp(-math.Pow((pos-0.6-0.08*math.Cos(0.7*sec))/0.18, 2))
		energy := (0.15 + 0.85*math.Max(f1, 0.7*f2)) * syllable * envelope
		out[i] = -90 + 75*energy
	}
	return out
}
