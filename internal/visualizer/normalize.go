package visualizer

import "math"

const (
	MinDb = -100.0
	MaxDb = -10.0
)

// Silence is the band reading that means "no signal".
var Silence = math.Inf(-1)

// NormalizeDb maps one raw reading into [0, 1]. The reading is clamped into
// [MinDb, MaxDb], rescaled linearly and square-rooted for a perceptual curve.
func NormalizeDb(value float64) float64 {
	if math.IsInf(value, -1) || math.IsNaN(value) {
		return 0
	}
	db := math.Max(MinDb, math.Min(MaxDb, value))
	level := (db - MinDb) / (MaxDb - MinDb)
	return math.Sqrt(level)
}

// NormalizeFrequencies returns a new slice holding NormalizeDb of every band.
func NormalizeFrequencies(bands []float64) []float64 {
	out := make([]float64, len(bands))
	for i, v := range bands {
		out[i] = NormalizeDb(v)
	}
	return out
}

// SilentBands returns n bands of silence, used before the first audio frame.
func SilentBands(n int) []float64 {
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = Silence
	}
	return out
}
