package audio

// Source delivers the latest raw band readings in decibels. Implementations
// return a fresh slice per call; a nil result means no frame has arrived yet.
type Source interface {
	Bands() []float64
}

// Closer is implemented by sources that hold devices or goroutines.
type Closer interface {
	Close() error
}
