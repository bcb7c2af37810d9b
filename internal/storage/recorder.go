package storage

import (
	"sync"
	"time"

	"github.com/san-kum/voxgrid/internal/visualizer"
)

// Recorder accumulates frames in memory until they are saved.
type Recorder struct {
	mu     sync.Mutex
	start  time.Time
	frames []Frame
	limit  int
}

// NewRecorder keeps at most limit frames; older frames are dropped.
func NewRecorder(limit int) *Recorder {
	return &Recorder{start: time.Now(), limit: limit}
}

// Add records bands captured at now. Bands are copied.
func (r *Recorder) Add(now time.Time, state visualizer.AgentState, bands []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, Frame{
		Time:  now.Sub(r.start).Seconds(),
		State: state,
		Bands: append([]float64(nil), bands...),
	})
	if r.limit > 0 && len(r.frames) > r.limit {
		r.frames = r.frames[len(r.frames)-r.limit:]
	}
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Frames returns a copy of the recorded frames.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}
