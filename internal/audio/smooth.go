package audio

import "math"

// decay in dB per block when the level falls; rises are immediate
const fallRate = 3.0

// smoothDb follows rising levels instantly and lets falling levels decay,
// which keeps the grid from flickering between syllables.
func smoothDb(prev, next float64) float64 {
	if next >= prev {
		return next
	}
	fallen := prev - fallRate
	if fallen < next {
		return next
	}
	if fallen < -120 {
		return math.Inf(-1)
	}
	return fallen
}
