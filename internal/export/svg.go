package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/voxgrid/internal/visualizer"
)

const (
	defaultBackground = "#0a0a0a"
	defaultOff        = "#2a2a2a"
)

// GridToSVG draws a rendered grid as rounded squares. Lit and highlighted
// cells are filled, unlit cells are outlined.
func GridToSVG(grid visualizer.Grid, cellSize, gap float64, background string) string {
	if grid.Rows == 0 || grid.Cols == 0 {
		return ""
	}
	if background == "" {
		background = defaultBackground
	}

	width := float64(grid.Cols)*cellSize + float64(grid.Cols+1)*gap
	height := float64(grid.Rows)*cellSize + float64(grid.Rows+1)*gap
	radius := cellSize * 0.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, attr(background)))

	for y, row := range grid.Cells {
		for x, cell := range row {
			color := cell.Style.Foreground
			if color == "" {
				color = defaultOff
			}
			px := gap + float64(x)*(cellSize+gap)
			py := gap + float64(y)*(cellSize+gap)

			if cell.Class.On || cell.Highlighted {
				sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s"/>
`, px, py, cellSize, cellSize, radius, attr(color)))
			} else {
				sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="none" stroke="%s" stroke-width="1"/>
`, px+0.5, py+0.5, cellSize-1, cellSize-1, radius, attr(color)))
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// IntensityToSVG plots an intensity series in [0,1] as a polyline.
func IntensityToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, defaultBackground, attr(strokeColor)))

	step := float64(width) / float64(len(values)-1)
	for i, v := range values {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		x := float64(i) * step
		y := float64(height) - v*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func attr(s string) string {
	return html.EscapeString(s)
}
