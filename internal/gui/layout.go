package gui

import "math"

// Rect is a cell rectangle in window pixels.
type Rect struct {
	X, Y, W, H float32
}

// Layout fits a rows x cols grid of square cells into the area, centered.
// gap is the spacing between cells in pixels; the cell side is clamped to
// [minSide, maxSide] when those are positive.
func Layout(rows, cols int, areaX, areaY, areaW, areaH, gap, minSide, maxSide float32) [][]Rect {
	if rows <= 0 || cols <= 0 || areaW <= 0 || areaH <= 0 {
		return nil
	}

	side := float32(math.Min(
		float64((areaW-gap*float32(cols-1))/float32(cols)),
		float64((areaH-gap*float32(rows-1))/float32(rows)),
	))
	if maxSide > 0 && side > maxSide {
		side = maxSide
	}
	if minSide > 0 && side < minSide {
		side = minSide
	}

	totalW := side*float32(cols) + gap*float32(cols-1)
	totalH := side*float32(rows) + gap*float32(rows-1)
	x0 := areaX + (areaW-totalW)/2
	y0 := areaY + (areaH-totalH)/2

	out := make([][]Rect, rows)
	for y := 0; y < rows; y++ {
		out[y] = make([]Rect, cols)
		for x := 0; x < cols; x++ {
			out[y][x] = Rect{
				X: x0 + float32(x)*(side+gap),
				Y: y0 + float32(y)*(side+gap),
				W: side,
				H: side,
			}
		}
	}
	return out
}
