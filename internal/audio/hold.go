package audio

import "github.com/san-kum/voxgrid/internal/visualizer"

// Held wraps a Source so every read yields a frame: silence of the
// configured width until the source delivers, then the last frame it
// delivered whenever it has nothing new. Not safe for concurrent use.
type Held struct {
	src  Source
	last []float64
}

// Hold wraps src with a silent frame of bands entries.
func Hold(src Source, bands int) *Held {
	if h, ok := src.(*Held); ok {
		return h
	}
	return &Held{src: src, last: visualizer.SilentBands(bands)}
}

// Bands returns a copy of the newest frame.
func (h *Held) Bands() []float64 {
	if b := h.src.Bands(); b != nil {
		h.last = b
	}
	return append([]float64(nil), h.last...)
}

// Close releases the wrapped source when it holds a device.
func (h *Held) Close() error {
	if c, ok := h.src.(Closer); ok {
		return c.Close()
	}
	return nil
}
