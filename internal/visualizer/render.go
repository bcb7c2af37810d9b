package visualizer

import "math"

// Transition identifies which timing a cell's style carries.
type Transition int

const (
	// TransitionNone is used while speaking: styles switch with audio frames.
	TransitionNone Transition = iota
	// TransitionGrow marks an idle cell turning on.
	TransitionGrow
	// TransitionDecay marks an idle cell turning off.
	TransitionDecay
)

// Class is the geometric verdict for one cell before styling.
type Class struct {
	On             bool
	Distance       float64
	DistanceFactor float64
	Transition     Transition
}

// Cell is one resolved grid position.
type Cell struct {
	Row, Col    int
	Class       Class
	Highlighted bool
	Style       Style
}

// Grid is the output of one render pass. Cells is indexed [row][col].
type Grid struct {
	Rows, Cols int
	Intensity  float64
	Cells      [][]Cell
}

// At returns the cell at row, col.
func (g Grid) At(row, col int) Cell { return g.Cells[row][col] }

// OnCount returns how many cells are on.
func (g Grid) OnCount() int {
	n := 0
	for _, row := range g.Cells {
		for _, c := range row {
			if c.Class.On {
				n++
			}
		}
	}
	return n
}

// Intensity averages normalized volumes and applies the 0.8 emphasis curve.
// Empty or non-finite input yields 0.
func Intensity(volumes []float64) float64 {
	if len(volumes) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range volumes {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
	}
	avg := sum / float64(len(volumes))
	if avg <= 0 {
		return 0
	}
	if avg > 1 {
		avg = 1
	}
	return math.Pow(avg, 0.8)
}

// DistanceFactor returns the distance of (col, row) from the center
// (mid, mid) where mid = rows/2, and that distance normalized by the corner
// distance and clamped into [0, 1].
func DistanceFactor(col, row, rows int) (distance, factor float64) {
	mid := float64(rows / 2)
	distance = math.Hypot(mid-float64(col), mid-float64(row))
	maxDistance := math.Hypot(mid, mid)
	if maxDistance == 0 {
		if distance == 0 {
			return distance, 0
		}
		return distance, 1
	}
	return distance, math.Min(distance/maxDistance, 1)
}

// Classify decides whether a cell is lit. A cell is on when its distance
// factor is strictly below the intensity, so the lit area grows outward from
// the center as volume rises. Outside of speaking the verdict also picks a
// grow or decay transition.
func Classify(state AgentState, intensity float64, col, row, rows int) Class {
	distance, factor := DistanceFactor(col, row, rows)
	c := Class{
		On:             factor < intensity,
		Distance:       distance,
		DistanceFactor: factor,
	}
	if state != StateSpeaking {
		if c.On {
			c.Transition = TransitionGrow
		} else {
			c.Transition = TransitionDecay
		}
	}
	return c
}

// ResolveStyle layers base, on/off, transition and transformer styles.
func ResolveStyle(c Class, opts *Options) Style {
	if opts == nil {
		opts = &Options{}
	}
	style := opts.BaseStyle
	if c.On {
		style = style.Merge(opts.OnStyle)
	} else {
		style = style.Merge(opts.OffStyle)
	}
	switch c.Transition {
	case TransitionGrow:
		style.Transition = opts.Animation.GrowTransition()
	case TransitionDecay:
		style.Transition = opts.Animation.DecayTransition()
	}
	if opts.Transformer != nil {
		style = style.Merge(opts.Transformer(c.Distance))
	}
	return style
}

// Render builds the style matrix for one frame. The column count is the
// number of volumes, the row count comes from opts. The highlighted cell, if
// any, gets HighlightStyle merged over its resolved style.
func Render(state AgentState, volumes []float64, highlight int, opts *Options) Grid {
	opts = opts.ForState(state)
	cols := len(volumes)
	rows := opts.Rows(cols)
	if rows <= 0 || cols <= 0 {
		return Grid{}
	}

	intensity := Intensity(volumes)
	grid := Grid{
		Rows:      rows,
		Cols:      cols,
		Intensity: intensity,
		Cells:     make([][]Cell, rows),
	}
	for y := 0; y < rows; y++ {
		grid.Cells[y] = make([]Cell, cols)
		for x := 0; x < cols; x++ {
			class := Classify(state, intensity, x, y, rows)
			cell := Cell{
				Row:   y,
				Col:   x,
				Class: class,
				Style: ResolveStyle(class, opts),
			}
			if highlight >= 0 && highlight == y*cols+x {
				cell.Highlighted = true
				cell.Style = cell.Style.Merge(opts.HighlightStyle)
			}
			grid.Cells[y][x] = cell
		}
	}
	return grid
}
