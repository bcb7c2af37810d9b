package viz

import (
	"strings"

	"github.com/san-kum/voxgrid/internal/visualizer"
)

// RenderGrid draws a grid as styled terminal text. colors may be nil or
// hold per-cell foreground overrides. Each cell is cellHeight lines tall and
// cells are separated by spacing columns.
func RenderGrid(g visualizer.Grid, colors [][]string, spacing, cellHeight int) string {
	if g.Rows == 0 || g.Cols == 0 {
		return ""
	}
	if cellHeight < 1 {
		cellHeight = 1
	}
	gap := strings.Repeat(" ", spacing)

	var b strings.Builder
	for y, row := range g.Cells {
		var line strings.Builder
		for x, cell := range row {
			if x > 0 {
				line.WriteString(gap)
			}
			fg := ""
			if colors != nil && y < len(colors) && x < len(colors[y]) {
				fg = colors[y][x]
			}
			line.WriteString(CellStyle(cell.Style, fg).Render(cell.Style.Glyph))
		}
		for h := 0; h < cellHeight; h++ {
			b.WriteString(line.String())
			if h < cellHeight-1 || y < g.Rows-1 {
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}
