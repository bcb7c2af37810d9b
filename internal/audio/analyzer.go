package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	SampleRate = 44100
	BufferSize = 1024

	minBandHz = 60.0
	maxBandHz = 8000.0
)

// Analyzer turns a block of PCM samples into log-spaced band levels in dB
// relative to full scale. Bands with no energy report negative infinity.
type Analyzer struct {
	bands      int
	size       int
	sampleRate float64
	window     []float64
	windowSum  float64
	edges      []int
	buf        []float64
}

// NewAnalyzer builds an analyzer for blocks of size samples.
func NewAnalyzer(size, bands int, sampleRate float64) *Analyzer {
	if size < 2 {
		size = 2
	}
	if bands < 1 {
		bands = 1
	}
	if bands > size/2 {
		bands = size / 2
	}
	a := &Analyzer{
		bands:      bands,
		size:       size,
		sampleRate: sampleRate,
		window:     make([]float64, size),
		buf:        make([]float64, size),
	}
	for i := range a.window {
		a.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
		a.windowSum += a.window[i]
	}
	a.edges = bandEdges(size, bands, sampleRate)
	return a
}

// Bands returns the number of output bands.
func (a *Analyzer) Bands() int { return a.bands }

// Process analyzes one block. Short blocks are zero padded.
func (a *Analyzer) Process(samples []float32) []float64 {
	for i := range a.buf {
		v := 0.0
		if i < len(samples) {
			v = float64(samples[i])
		}
		a.buf[i] = v * a.window[i]
	}
	spectrum := fft.FFTReal(a.buf)

	out := make([]float64, a.bands)
	for b := 0; b < a.bands; b++ {
		lo, hi := a.edges[b], a.edges[b+1]
		peak := 0.0
		for k := lo; k < hi; k++ {
			peak = math.Max(peak, cmplx.Abs(spectrum[k]))
		}
		// amplitude relative to a full-scale sine
		amp := 2 * peak / a.windowSum
		if amp <= 0 {
			out[b] = math.Inf(-1)
			continue
		}
		out[b] = 20 * math.Log10(amp)
	}
	return out
}

// bandEdges returns bands+1 strictly increasing FFT bin boundaries spaced
// logarithmically between minBandHz and maxBandHz (or Nyquist).
func bandEdges(size, bands int, sampleRate float64) []int {
	nyquistBin := size / 2
	hzPerBin := sampleRate / float64(size)
	top := math.Min(maxBandHz, sampleRate/2)

	edges := make([]int, bands+1)
	ratio := math.Pow(top/minBandHz, 1/float64(bands))
	for i := range edges {
		hz := minBandHz * math.Pow(ratio, float64(i))
		edges[i] = int(math.Round(hz / hzPerBin))
	}
	edges[0] = max(edges[0], 1)
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			edges[i] = edges[i-1] + 1
		}
	}
	// squeeze back under Nyquist if the minimum widths pushed us over
	for i := len(edges) - 1; i >= 0; i-- {
		limit := nyquistBin - (len(edges) - 1 - i)
		if edges[i] > limit {
			edges[i] = limit
		}
	}
	if edges[0] < 0 {
		edges[0] = 0
	}
	return edges
}
