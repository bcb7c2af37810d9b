package viz

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/voxgrid/internal/visualizer"
)

type fade struct {
	from, to colorful.Color
	start    time.Time
	dur      time.Duration
}

func (f fade) at(now time.Time) colorful.Color {
	if f.dur <= 0 {
		return f.to
	}
	p := float64(now.Sub(f.start)) / float64(f.dur)
	if p >= 1 {
		return f.to
	}
	if p < 0 {
		p = 0
	}
	return f.from.BlendLab(f.to, p).Clamped()
}

// Fader eases each cell's foreground toward its target color over the
// transition carried by the cell's style.
type Fader struct {
	rows, cols int
	cells      []fade
	seen       []bool
}

func NewFader() *Fader {
	return &Fader{}
}

// Step advances the fades to now and returns the foreground hex color of
// every cell, indexed [row][col]. Cells with unparseable colors keep the
// style's value unchanged.
func (f *Fader) Step(grid visualizer.Grid, now time.Time) [][]string {
	if grid.Rows != f.rows || grid.Cols != f.cols {
		f.rows, f.cols = grid.Rows, grid.Cols
		f.cells = make([]fade, grid.Rows*grid.Cols)
		f.seen = make([]bool, grid.Rows*grid.Cols)
	}

	out := make([][]string, grid.Rows)
	for y, row := range grid.Cells {
		out[y] = make([]string, len(row))
		for x, cell := range row {
			target, err := colorful.Hex(cell.Style.Foreground)
			if err != nil {
				out[y][x] = cell.Style.Foreground
				continue
			}

			i := y*grid.Cols + x
			cur := &f.cells[i]
			switch {
			case !f.seen[i]:
				*cur = fade{from: target, to: target, start: now}
				f.seen[i] = true
			case cur.to != target:
				*cur = fade{from: cur.at(now), to: target, start: now, dur: cell.Style.Transition}
			}
			out[y][x] = cur.at(now).Hex()
		}
	}
	return out
}

// Reset forgets all fades so the next Step snaps to its targets.
func (f *Fader) Reset() {
	f.rows, f.cols = 0, 0
	f.cells = nil
	f.seen = nil
}
