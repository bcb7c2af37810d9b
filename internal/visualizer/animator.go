package visualizer

import (
	"context"
	"sync"
	"time"
)

// Animator drives the ambient highlighted cell. It runs a ticker goroutine
// while active and owns the highlight index; readers take snapshots with
// Index. The ticker is bound to a context and released on pause, Stop or
// cancellation of the parent context, and Stop does not return until the
// goroutine has exited.
type Animator struct {
	mu       sync.Mutex
	path     Path
	rows     int
	cols     int
	interval time.Duration
	agent    AgentState
	tick     int
	index    int
	onTick   func(int)

	cancel context.CancelFunc
	done   chan struct{}
}

// NewAnimator creates a paused animator for a rows x cols grid.
func NewAnimator(rows, cols int, opts AnimationOptions, path Path) *Animator {
	if path == nil {
		path = &StatePath{Ring: opts.ConnectingRing}
	}
	return &Animator{
		path:     path,
		rows:     rows,
		cols:     cols,
		interval: opts.TickInterval(),
		agent:    StateOffline,
		index:    NoHighlight,
	}
}

// OnTick registers a callback invoked with every published index. The
// callback runs on the animator goroutine and must not call back into the
// animator's lifecycle methods.
func (a *Animator) OnTick(fn func(int)) {
	a.mu.Lock()
	a.onTick = fn
	a.mu.Unlock()
}

// Update feeds the current agent state. The animator starts ticking when
// the state is anything but speaking and pauses otherwise.
func (a *Animator) Update(ctx context.Context, state AgentState) {
	a.mu.Lock()
	a.agent = state
	a.mu.Unlock()

	switch AnimatorStateFor(state) {
	case AnimatorActive:
		a.Start(ctx)
	case AnimatorPaused:
		a.Stop()
	}
}

// Start begins ticking. It is a no-op if the animator is already running.
func (a *Animator) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runningLocked() {
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	a.tick = 0
	go a.run(runCtx, a.interval, a.done)
}

// Stop cancels the ticker, waits for the goroutine to exit and clears the
// highlight. It is safe to call on a stopped animator.
func (a *Animator) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	a.mu.Lock()
	a.index = NoHighlight
	a.mu.Unlock()
}

func (a *Animator) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			a.Advance()
		}
	}
}

// Advance performs one tick synchronously and returns the new index.
func (a *Animator) Advance() int {
	a.mu.Lock()
	idx := NoHighlight
	if n := a.rows * a.cols; n > 0 {
		idx = wrap(a.path.Next(a.rows, a.cols, a.agent, a.tick), n)
	}
	a.tick++
	a.index = idx
	fn := a.onTick
	a.mu.Unlock()

	if fn != nil {
		fn(idx)
	}
	return idx
}

// Resize changes the grid dimensions. The current highlight is cleared and
// the path restarts from tick zero.
func (a *Animator) Resize(rows, cols int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if rows == a.rows && cols == a.cols {
		return
	}
	a.rows, a.cols = rows, cols
	a.tick = 0
	a.index = NoHighlight
}

// Index returns the current highlight or NoHighlight.
func (a *Animator) Index() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.index
}

// Ticks returns the number of ticks since the last start.
func (a *Animator) Ticks() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tick
}

// State reports whether the animator is ticking.
func (a *Animator) State() GridAnimatorState {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runningLocked() {
		return AnimatorActive
	}
	return AnimatorPaused
}

// runningLocked reports whether the ticker goroutine is alive. A cancelled
// parent context ends the goroutine without a call to Stop.
func (a *Animator) runningLocked() bool {
	if a.done == nil {
		return false
	}
	select {
	case <-a.done:
		return false
	default:
		return true
	}
}
