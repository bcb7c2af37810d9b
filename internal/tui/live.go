package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/voxgrid/internal/visualizer"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	reset       = "\033[0m"
)

// FrameFunc produces the grid to draw and the agent state it was rendered for.
type FrameFunc func() (visualizer.Grid, visualizer.AgentState)

// LiveRenderer writes frames as plain ANSI text, for terminals or pipes
// where the full-screen program is unwanted.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	color     bool
	lastFrame time.Time
}

func NewLiveRenderer(out io.Writer, frameRate int, color bool) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{out: out, frameRate: frameRate, color: color}
}

// OnFrame redraws the screen unless the previous frame is too recent.
func (r *LiveRenderer) OnFrame(grid visualizer.Grid, state visualizer.AgentState) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	fmt.Fprint(r.out, clearScreen)
	fmt.Fprint(r.out, Frame(grid, r.color))
	fmt.Fprintf(r.out, "\n\n%-10s %s\n", "state", state)
	fmt.Fprintf(r.out, "%-10s %s %.2f\n", "intensity", meter(grid.Intensity, 20), grid.Intensity)
}

// Run draws frames at the frame rate until ctx is done.
func (r *LiveRenderer) Run(ctx context.Context, frame FrameFunc) error {
	r.Start()
	defer r.Stop()

	ticker := time.NewTicker(time.Second / time.Duration(r.frameRate))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.OnFrame(frame())
		}
	}
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

// Frame formats a grid as text, one line per row with cells separated by a
// space. With color set, foregrounds are emitted as 24-bit ANSI sequences.
func Frame(grid visualizer.Grid, color bool) string {
	var b strings.Builder
	for y, row := range grid.Cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x, cell := range row {
			if x > 0 {
				b.WriteByte(' ')
			}
			glyph := cell.Style.Glyph
			if glyph == "" {
				glyph = fallbackGlyph(cell)
			}
			if color {
				if seq := ansiColor(cell.Style); seq != "" {
					b.WriteString(seq + glyph + reset)
					continue
				}
			}
			b.WriteString(glyph)
		}
	}
	return b.String()
}

func fallbackGlyph(cell visualizer.Cell) string {
	switch {
	case cell.Highlighted:
		return "@@"
	case cell.Class.On:
		return "##"
	default:
		return ".."
	}
}

func ansiColor(s visualizer.Style) string {
	c, err := colorful.Hex(s.Foreground)
	if err != nil {
		return ""
	}
	r, g, b := c.RGB255()
	seq := fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
	if s.Bold {
		seq = "\033[1m" + seq
	}
	return seq
}

func meter(v float64, width int) string {
	filled := int(v * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
