package visualizer

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func testOptions() *Options {
	return &Options{
		BaseStyle: Style{Glyph: "■"},
		OnStyle:   Style{Foreground: "#00ffff"},
		OffStyle:  Style{Foreground: "#333333", Glyph: "·"},
		HighlightStyle: Style{
			Foreground: "#ffffff",
			Glyph:      "◆",
			Bold:       true,
		},
	}
}

func TestIntensity(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"zeros", filled(4, 0), 0},
		{"ones", filled(4, 1), 1},
		{"half", filled(3, 0.5), math.Pow(0.5, 0.8)},
		{"nan skipped", []float64{math.NaN(), 1}, math.Pow(0.5, 0.8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Intensity(tt.in)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Intensity(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDistanceFactor(t *testing.T) {
	if _, f := DistanceFactor(1, 1, 3); f != 0 {
		t.Errorf("center factor = %v, want 0", f)
	}
	if _, f := DistanceFactor(0, 0, 3); math.Abs(f-1) > 1e-12 {
		t.Errorf("corner factor = %v, want 1", f)
	}
	if d, f := DistanceFactor(1, 0, 3); d != 1 || math.Abs(f-1/math.Sqrt2) > 1e-12 {
		t.Errorf("edge = (%v, %v)", d, f)
	}

	// single row: mid is 0 so only the first cell is the center
	if _, f := DistanceFactor(0, 0, 1); f != 0 {
		t.Errorf("single-row center factor = %v", f)
	}
	if _, f := DistanceFactor(3, 0, 1); f != 1 {
		t.Errorf("single-row far factor = %v", f)
	}

	// columns past the corner distance clamp to 1
	if _, f := DistanceFactor(9, 0, 3); f != 1 {
		t.Errorf("expected clamp to 1, got %v", f)
	}
}

func TestClassify_StateBranch(t *testing.T) {
	speaking := Classify(StateSpeaking, 1, 1, 1, 3)
	if !speaking.On || speaking.Transition != TransitionNone {
		t.Errorf("speaking center: %+v", speaking)
	}

	grow := Classify(StateListening, 1, 1, 1, 3)
	if !grow.On || grow.Transition != TransitionGrow {
		t.Errorf("listening center: %+v", grow)
	}

	decay := Classify(StateThinking, 0, 1, 1, 3)
	if decay.On || decay.Transition != TransitionDecay {
		t.Errorf("thinking silent center: %+v", decay)
	}
}

func TestRender_SpeakingSilenceAllOff(t *testing.T) {
	grid := Render(StateSpeaking, filled(5, 0), NoHighlight, testOptions())

	if grid.Rows != 5 || grid.Cols != 5 {
		t.Fatalf("expected 5x5 grid, got %dx%d", grid.Rows, grid.Cols)
	}
	if n := grid.OnCount(); n != 0 {
		t.Errorf("expected all cells off, got %d on", n)
	}
	if g := grid.At(2, 2).Style.Glyph; g != "·" {
		t.Errorf("expected off glyph, got %q", g)
	}
}

func TestRender_SpeakingFullVolume(t *testing.T) {
	grid := Render(StateSpeaking, filled(5, 1), NoHighlight, testOptions())

	if !grid.At(2, 2).Class.On {
		t.Error("center must be on at full volume")
	}
	// the four corners sit at factor exactly 1 and stay off under strict <
	if n := grid.OnCount(); n != 21 {
		t.Errorf("expected 21 cells on, got %d", n)
	}
	for _, rc := range [][2]int{{0, 0}, {0, 4}, {4, 0}, {4, 4}} {
		if grid.At(rc[0], rc[1]).Class.On {
			t.Errorf("corner %v should be off", rc)
		}
	}
}

func TestRender_ThreeByThreeTieBreak(t *testing.T) {
	grid := Render(StateSpeaking, []float64{1, 1, 1}, NoHighlight, testOptions())

	want := [][]bool{
		{false, true, false},
		{true, true, true},
		{false, true, false},
	}
	for y := range want {
		for x := range want[y] {
			if got := grid.At(y, x).Class.On; got != want[y][x] {
				t.Errorf("cell (%d,%d): on=%v, want %v", y, x, got, want[y][x])
			}
		}
	}
	if grid.At(0, 0).Style.Transition != 0 {
		t.Error("speaking cells carry no transition")
	}
}

func TestRender_OfflineSilenceUsesDecayTransition(t *testing.T) {
	opts := testOptions()
	grid := Render(StateOffline, filled(5, 0), NoHighlight, opts)

	if grid.Rows != 5 {
		t.Fatalf("rows should default to band count, got %d", grid.Rows)
	}
	want := opts.Animation.DecayTransition()
	if want != 10*time.Millisecond {
		t.Fatalf("expected 10ms decay, got %v", want)
	}
	for y := 0; y < grid.Rows; y++ {
		for x := 0; x < grid.Cols; x++ {
			c := grid.At(y, x)
			if c.Class.On {
				t.Errorf("cell (%d,%d) should be off", y, x)
			}
			if c.Style.Transition != want {
				t.Errorf("cell (%d,%d): transition %v, want %v", y, x, c.Style.Transition, want)
			}
		}
	}
}

func TestRender_IdleGrowTransition(t *testing.T) {
	opts := testOptions()
	opts.Animation.Interval = 200 * time.Millisecond
	grid := Render(StateListening, filled(5, 1), NoHighlight, opts)

	center := grid.At(2, 2)
	if !center.Class.On || center.Style.Transition != 200*time.Millisecond {
		t.Errorf("center: on=%v transition=%v", center.Class.On, center.Style.Transition)
	}
	corner := grid.At(0, 0)
	if corner.Class.On || corner.Style.Transition != 20*time.Millisecond {
		t.Errorf("corner: on=%v transition=%v", corner.Class.On, corner.Style.Transition)
	}
}

func TestRender_EmptyInput(t *testing.T) {
	opts := testOptions()
	opts.RowCount = 4

	grid := Render(StateSpeaking, nil, NoHighlight, opts)
	if grid.Rows != 0 || grid.Cols != 0 || len(grid.Cells) != 0 {
		t.Errorf("expected empty grid, got %+v", grid)
	}
	if grid.Intensity != 0 {
		t.Errorf("expected zero intensity, got %v", grid.Intensity)
	}

	grid = Render(StateListening, []float64{}, 3, nil)
	if grid.OnCount() != 0 {
		t.Error("expected no cells")
	}
}

func TestRender_Deterministic(t *testing.T) {
	volumes := []float64{0.1, 0.7, 0.3, 0.9, 0.4}
	for _, st := range AgentStates {
		a := Render(st, volumes, 7, testOptions())
		b := Render(st, volumes, 7, testOptions())
		if !reflect.DeepEqual(a, b) {
			t.Errorf("state %s: renders differ", st)
		}
	}
}

func TestRender_RowCountOverride(t *testing.T) {
	opts := testOptions()
	opts.RowCount = 3
	grid := Render(StateListening, filled(7, 0.5), NoHighlight, opts)
	if grid.Rows != 3 || grid.Cols != 7 {
		t.Errorf("expected 3x7, got %dx%d", grid.Rows, grid.Cols)
	}
}

func TestRender_TransformerKeyedByDistance(t *testing.T) {
	opts := testOptions()
	seen := map[float64]bool{}
	opts.Transformer = func(d float64) Style {
		seen[d] = true
		if d == 0 {
			return Style{Background: "#ff0000"}
		}
		return Style{}
	}

	grid := Render(StateSpeaking, filled(3, 1), NoHighlight, opts)
	if grid.At(1, 1).Style.Background != "#ff0000" {
		t.Error("transformer style not applied to center")
	}
	if grid.At(0, 1).Style.Background != "" {
		t.Error("transformer style leaked to edge")
	}
	for _, d := range []float64{0, 1, math.Sqrt2} {
		if !seen[d] {
			t.Errorf("transformer not called with distance %v", d)
		}
	}
}

func TestRender_HighlightOverridesCell(t *testing.T) {
	opts := testOptions()
	opts.Transformer = func(float64) Style { return Style{Foreground: "#123456", Glyph: "x"} }

	// index 7 in a 5x5 grid is row 1, col 2
	grid := Render(StateListening, filled(5, 0), 7, opts)

	c := grid.At(1, 2)
	if !c.Highlighted {
		t.Fatal("expected cell (1,2) to be highlighted")
	}
	if c.Style.Glyph != "◆" || c.Style.Foreground != "#ffffff" || !c.Style.Bold {
		t.Errorf("highlight did not override: %+v", c.Style)
	}
	if c.Class.On {
		t.Error("highlight must not change the on/off verdict")
	}
	if c.Style.Transition != opts.Animation.DecayTransition() {
		t.Error("highlight should keep the underlying transition")
	}

	highlighted := 0
	for _, row := range grid.Cells {
		for _, cell := range row {
			if cell.Highlighted {
				highlighted++
			}
		}
	}
	if highlighted != 1 {
		t.Errorf("expected exactly one highlighted cell, got %d", highlighted)
	}

	none := Render(StateListening, filled(5, 0), NoHighlight, opts)
	if none.At(1, 2).Highlighted {
		t.Error("NoHighlight must not highlight any cell")
	}
}

func TestRender_StateOptions(t *testing.T) {
	opts := testOptions()
	thinking := testOptions()
	thinking.RowCount = 2
	thinking.OffStyle = Style{Glyph: "~"}
	opts.StateOptions = map[AgentState]*Options{StateThinking: thinking}

	grid := Render(StateThinking, filled(4, 0), NoHighlight, opts)
	if grid.Rows != 2 {
		t.Errorf("expected state override rows 2, got %d", grid.Rows)
	}
	if g := grid.At(0, 0).Style.Glyph; g != "~" {
		t.Errorf("expected override glyph, got %q", g)
	}

	grid = Render(StateListening, filled(4, 0), NoHighlight, opts)
	if grid.Rows != 4 {
		t.Errorf("expected base rows 4, got %d", grid.Rows)
	}
}

func TestStyleMerge(t *testing.T) {
	base := Style{Glyph: "■", Foreground: "#111111", Transition: time.Second}
	got := base.Merge(Style{Foreground: "#222222", Bold: true})
	want := Style{Glyph: "■", Foreground: "#222222", Bold: true, Transition: time.Second}
	if got != want {
		t.Errorf("Merge = %+v, want %+v", got, want)
	}
}
