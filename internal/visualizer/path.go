package visualizer

// NoHighlight is the index reported when no cell should be highlighted.
const NoHighlight = -1

// Path chooses the highlighted cell for a tick. Implementations must be
// deterministic in their inputs and return an index in [0, rows*cols) for
// any grid with at least one cell.
type Path interface {
	Next(rows, cols int, state AgentState, tick int) int
}

// PathFunc adapts a plain function to Path.
type PathFunc func(rows, cols int, state AgentState, tick int) int

func (f PathFunc) Next(rows, cols int, state AgentState, tick int) int {
	return f(rows, cols, state, tick)
}

// RasterScan walks every cell row by row.
type RasterScan struct{}

func (RasterScan) Next(rows, cols int, _ AgentState, tick int) int {
	n := rows * cols
	if n <= 0 {
		return NoHighlight
	}
	return wrap(tick, n)
}

// RingScan circles the cells at Chebyshev distance Radius from the grid
// center, clockwise from the top-left corner of the ring. Radii larger than
// the grid are clamped; cells outside the grid are skipped.
type RingScan struct {
	Radius int
}

func (r RingScan) Next(rows, cols int, state AgentState, tick int) int {
	ring := Ring(rows, cols, r.Radius)
	if len(ring) == 0 {
		return RasterScan{}.Next(rows, cols, state, tick)
	}
	return ring[wrap(tick, len(ring))]
}

// Ring returns the row-major indices of the ring of the given radius around
// (rows/2, rows/2), in clockwise order.
func Ring(rows, cols, radius int) []int {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	mid := rows / 2
	maxRadius := max(mid, rows-1-mid, cols-1-mid)
	if radius > maxRadius {
		radius = maxRadius
	}
	if radius < 0 {
		radius = 0
	}

	inside := func(x, y int) bool { return x >= 0 && x < cols && y >= 0 && y < rows }
	if radius == 0 {
		if inside(mid, mid) {
			return []int{mid*cols + mid}
		}
		return nil
	}

	top, bottom := mid-radius, mid+radius
	left, right := mid-radius, mid+radius
	out := make([]int, 0, 8*radius)
	add := func(x, y int) {
		if inside(x, y) {
			out = append(out, y*cols+x)
		}
	}
	for x := left; x < right; x++ {
		add(x, top)
	}
	for y := top; y < bottom; y++ {
		add(right, y)
	}
	for x := right; x > left; x-- {
		add(x, bottom)
	}
	for y := bottom; y > top; y-- {
		add(left, y)
	}
	return out
}

// RandomWalk moves the highlight one step up, down, left or right per tick.
// Each step is a hash of Seed and the tick number, so the position at a tick
// depends only on Seed and the tick. The walk starts at the grid center and
// reflects off the edges. A RandomWalk caches its last position and is not
// safe for concurrent use.
type RandomWalk struct {
	Seed int64

	rows, cols int
	lastTick   int
	x, y       int
	valid      bool
}

func (w *RandomWalk) Next(rows, cols int, _ AgentState, tick int) int {
	if rows <= 0 || cols <= 0 {
		return NoHighlight
	}
	if tick < 0 {
		tick = 0
	}
	if !w.valid || w.rows != rows || w.cols != cols || tick < w.lastTick {
		w.rows, w.cols = rows, cols
		w.x, w.y = min(rows/2, cols-1), rows/2
		w.lastTick = 0
		w.valid = true
	}
	for t := w.lastTick + 1; t <= tick; t++ {
		w.step(t)
	}
	w.lastTick = tick
	return w.y*cols + w.x
}

func (w *RandomWalk) step(tick int) {
	switch splitmix(uint64(w.Seed)^uint64(tick)*0x9e3779b97f4a7c15) % 4 {
	case 0:
		w.y = bounce(w.y-1, w.rows)
	case 1:
		w.x = bounce(w.x+1, w.cols)
	case 2:
		w.y = bounce(w.y+1, w.rows)
	default:
		w.x = bounce(w.x-1, w.cols)
	}
}

// StatePath picks a path per agent state: the scanning ring while
// connecting, a random walk while thinking and a raster scan otherwise.
type StatePath struct {
	Ring int
	Seed int64

	walk RandomWalk
}

func (p *StatePath) Next(rows, cols int, state AgentState, tick int) int {
	switch state {
	case StateConnecting:
		return RingScan{Radius: p.Ring}.Next(rows, cols, state, tick)
	case StateThinking:
		p.walk.Seed = p.Seed
		return p.walk.Next(rows, cols, state, tick)
	default:
		return RasterScan{}.Next(rows, cols, state, tick)
	}
}

// NewPath returns the named path strategy. Unknown names get a StatePath.
func NewPath(name string, ring int, seed int64) Path {
	switch name {
	case "raster":
		return RasterScan{}
	case "ring":
		return RingScan{Radius: ring}
	case "walk":
		return &RandomWalk{Seed: seed}
	default:
		return &StatePath{Ring: ring, Seed: seed}
	}
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

func bounce(v, n int) int {
	if n <= 1 {
		return 0
	}
	if v < 0 {
		return 1
	}
	if v >= n {
		return n - 2
	}
	return v
}

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
