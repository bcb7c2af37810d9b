package gui

import (
	"context"
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/san-kum/voxgrid/internal/audio"
	"github.com/san-kum/voxgrid/internal/visualizer"
	"github.com/san-kum/voxgrid/internal/viz"
)

const (
	winW      = 1280
	winH      = 720
	cellPx    = 24
	maxTelem  = 300
	hudHeight = 120
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
)

// Session wires the window to its inputs.
type Session struct {
	Source   audio.Source
	Bands    int
	States   viz.StateSource
	Geometry *visualizer.Options
	Path     visualizer.Path
	Theme    string
	Logger   zerolog.Logger
}

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	session   Session
	theme     viz.Theme
	opts      *visualizer.Options
	animator  *visualizer.Animator
	fader     *viz.Fader
	state     visualizer.AgentState
	bands     []float64
	Running   bool
	Telemetry []float64
	log       zerolog.Logger
}

func initWindow() {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(winW, winH, "voxgrid")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func NewApp(s Session) *App {
	s.Source = audio.Hold(s.Source, s.Bands)
	cols := len(s.Source.Bands())
	theme := viz.GetTheme(s.Theme)
	opts := theme.Apply(s.Geometry)
	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		ctx:       ctx,
		cancel:    cancel,
		session:   s,
		theme:     theme,
		opts:      opts,
		animator:  visualizer.NewAnimator(opts.Rows(cols), cols, opts.Animation, s.Path),
		fader:     viz.NewFader(),
		bands:     visualizer.SilentBands(cols),
		Running:   true,
		Telemetry: make([]float64, 0, maxTelem),
		log:       s.Logger.With().Str("component", "gui").Logger(),
	}
}

// Run opens the window and blocks until it is closed.
func Run(s Session) {
	initWindow()
	defer rl.CloseWindow()

	app := NewApp(s)
	defer app.Close()
	app.log.Info().Str("theme", app.theme.Name).Msg("window opened")
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if a.Update() {
			return
		}
		a.Draw()
	}
}

// Close stops the animator.
func (a *App) Close() {
	a.animator.Stop()
	a.cancel()
}

var stateKeys = []struct {
	key   int32
	state visualizer.AgentState
}{
	{rl.KeyOne, visualizer.StateOffline},
	{rl.KeyTwo, visualizer.StateConnecting},
	{rl.KeyThree, visualizer.StateListening},
	{rl.KeyFour, visualizer.StateThinking},
	{rl.KeyFive, visualizer.StateSpeaking},
}

// Update handles input and pulls the next frame. It reports true when the
// user asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return true
	}

	if ctrl, ok := a.session.States.(viz.StateController); ok {
		for _, sk := range stateKeys {
			if rl.IsKeyPressed(sk.key) {
				ctrl.Set(sk.state)
			}
		}
		if rl.IsKeyPressed(rl.KeyA) {
			ctrl.Resume()
		}
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyT) {
		a.theme = viz.NextTheme(a.theme.Name)
		a.opts = a.theme.Apply(a.session.Geometry)
	}

	state := visualizer.StateOffline
	if a.session.States != nil {
		state = a.session.States.State()
	}
	if state != a.state {
		a.state = state
		a.animator.Update(a.ctx, state)
	}

	if a.Running {
		bands := a.session.Source.Bands()
		if len(bands) != len(a.bands) {
			a.animator.Resize(a.opts.Rows(len(bands)), len(bands))
			a.fader.Reset()
		}
		a.bands = bands
		a.Telemetry = append(a.Telemetry, visualizer.Intensity(visualizer.NormalizeFrequencies(bands)))
		if len(a.Telemetry) > maxTelem {
			a.Telemetry = a.Telemetry[1:]
		}
	}
	return false
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(hexColor(string(a.theme.Background), ColBg))

	a.drawGrid()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) drawGrid() {
	grid := visualizer.Render(a.state, visualizer.NormalizeFrequencies(a.bands), a.animator.Index(), a.opts)
	colors := a.fader.Step(grid, time.Now())

	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	gap := float32(a.opts.Spacing() * cellPx / 3)
	minSide := float32(a.opts.MinHeight * cellPx)
	maxSide := float32(a.opts.MaxHeight * cellPx * 2)
	rects := Layout(grid.Rows, grid.Cols, 40, 80, w-80, h-80-hudHeight, gap, minSide, maxSide)

	for y, row := range rects {
		for x, r := range row {
			cell := grid.At(y, x)
			col := hexColor(colors[y][x], ColTextDim)
			rec := rl.NewRectangle(r.X, r.Y, r.W, r.H)
			if cell.Class.On || cell.Highlighted {
				rl.DrawRectangleRounded(rec, 0.3, 8, col)
			} else {
				rl.DrawRectangleRoundedLines(rec, 0.3, 8, col)
			}
		}
	}
}

func (a *App) DrawHUD() {
	h := int32(rl.GetScreenHeight())
	w := int32(rl.GetScreenWidth())

	drawText("voxgrid", 30, 30, 24, ColSelect)
	drawText(fmt.Sprintf(":: %s", a.state), 150, 34, 16, ColText)

	status, col := "LIVE", ColSelect
	if !a.Running {
		status, col = "FROZEN", ColTextDim
	}
	drawText(status, w-130, 30, 16, col)

	a.DrawTelemetry(30, h-hudHeight+20, 400, 60)
	drawText("[1-5] STATE  [A] SCRIPT  [SPACE] FREEZE  [T] THEME  [Q] QUIT", w-620, h-40, 14, ColTextDim)
	drawText(fmt.Sprintf("%d FPS  %s", rl.GetFPS(), a.animator.State()), 30, h-40, 14, ColTextDim)
}

// DrawTelemetry plots the intensity history as a line strip.
func (a *App) DrawTelemetry(x, y, width, height int32) {
	if len(a.Telemetry) < 2 {
		return
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(x) + (float32(i)/float32(maxTelem))*float32(width)
		py := float32(y+height) - float32(val)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, hexColor(string(a.theme.Primary), ColAccent))
	drawText(fmt.Sprintf("I: %.2f", a.Telemetry[len(a.Telemetry)-1]), x+width+10, y+height-10, 14, ColText)
}

func drawText(text string, x, y int32, size int32, color rl.Color) {
	rl.DrawText(text, x, y, size, color)
}

func hexColor(hex string, fallback rl.Color) rl.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	r, g, b := c.RGB255()
	return rl.NewColor(r, g, b, 255)
}
