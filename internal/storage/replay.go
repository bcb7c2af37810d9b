package storage

import (
	"sort"
	"time"

	"github.com/san-kum/voxgrid/internal/visualizer"
)

// Replay plays recorded frames back against the wall clock. It satisfies
// audio.Source and also reports the recorded agent state.
type Replay struct {
	frames []Frame
	loop   bool
	start  time.Time
	now    func() time.Time
}

func NewReplay(frames []Frame, loop bool) *Replay {
	return &Replay{frames: frames, loop: loop, start: time.Now(), now: time.Now}
}

// Duration is the time span covered by the frames.
func (r *Replay) Duration() float64 {
	if len(r.frames) == 0 {
		return 0
	}
	return r.frames[len(r.frames)-1].Time - r.frames[0].Time
}

// FrameAt returns the last frame at or before elapsed seconds.
func (r *Replay) FrameAt(elapsed float64) (Frame, bool) {
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	span := r.Duration()
	if r.loop && span > 0 && elapsed > span {
		elapsed = elapsed - span*float64(int(elapsed/span))
	}
	t := r.frames[0].Time + elapsed
	i := sort.Search(len(r.frames), func(i int) bool { return r.frames[i].Time > t })
	if i == 0 {
		return r.frames[0], true
	}
	return r.frames[i-1], true
}

func (r *Replay) elapsed() float64 {
	return r.now().Sub(r.start).Seconds()
}

// Bands returns the bands of the current frame, or nil without frames.
func (r *Replay) Bands() []float64 {
	f, ok := r.FrameAt(r.elapsed())
	if !ok {
		return nil
	}
	return append([]float64(nil), f.Bands...)
}

// State returns the agent state of the current frame.
func (r *Replay) State() visualizer.AgentState {
	f, ok := r.FrameAt(r.elapsed())
	if !ok {
		return visualizer.StateOffline
	}
	return f.State
}

// Done reports whether a non-looping replay has passed its last frame.
func (r *Replay) Done() bool {
	return !r.loop && r.elapsed() > r.Duration()
}
