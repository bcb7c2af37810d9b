package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/voxgrid/internal/storage"
	"github.com/san-kum/voxgrid/internal/visualizer"
)

type fixedSource struct{ bands []float64 }

func (f fixedSource) Bands() []float64 { return append([]float64(nil), f.bands...) }

// waitingSource has not delivered a frame yet.
type waitingSource struct{}

func (waitingSource) Bands() []float64 { return nil }

type manualStates struct {
	state   visualizer.AgentState
	resumed bool
}

func (s *manualStates) State() visualizer.AgentState { return s.state }
func (s *manualStates) Set(st visualizer.AgentState) { s.state = st }
func (s *manualStates) Resume()                      { s.resumed = true }

func newTestModel(t *testing.T, states StateSource, store *storage.Store) Model {
	t.Helper()
	m := NewModel(Session{
		Source:     fixedSource{bands: []float64{-10, -10, -10}},
		States:     states,
		Theme:      "mono",
		SourceName: "test",
		Store:      store,
	})
	t.Cleanup(m.Shutdown)
	return m
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	if key == " " {
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	} else {
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func tick(m Model) Model {
	next, _ := m.Update(TickMsg(time.Now()))
	return next.(Model)
}

func TestModelStartsSilent(t *testing.T) {
	m := newTestModel(t, &manualStates{state: visualizer.StateSpeaking}, nil)
	grid := m.Grid()
	require.Equal(t, 3, grid.Rows)
	assert.Zero(t, grid.OnCount())
}

func TestModelTickPullsBands(t *testing.T) {
	m := newTestModel(t, &manualStates{state: visualizer.StateSpeaking}, nil)
	m = tick(m)

	grid := m.Grid()
	assert.Equal(t, 5, grid.OnCount())
	assert.Equal(t, visualizer.AnimatorPaused, m.animator.State())
	assert.Len(t, m.history, 1)
}

func TestModelBeforeFirstFrame(t *testing.T) {
	m := NewModel(Session{
		Source: waitingSource{},
		Bands:  5,
		States: &manualStates{state: visualizer.StateListening},
		Theme:  "mono",
	})
	t.Cleanup(m.Shutdown)

	m = tick(m)
	grid := m.Grid()
	require.Equal(t, 5, grid.Rows)
	require.Equal(t, 5, grid.Cols)
	assert.Zero(t, grid.OnCount())
	assert.Len(t, m.bands, 5)
	assert.Equal(t, visualizer.AnimatorActive, m.animator.State())
}

func TestModelIdleStartsAnimator(t *testing.T) {
	m := newTestModel(t, &manualStates{state: visualizer.StateListening}, nil)
	m = tick(m)
	assert.Equal(t, visualizer.AnimatorActive, m.animator.State())
}

func TestModelStateKeys(t *testing.T) {
	states := &manualStates{state: visualizer.StateListening}
	m := newTestModel(t, states, nil)

	m = press(m, "4")
	assert.Equal(t, visualizer.StateThinking, states.state)

	m = press(m, "a")
	assert.True(t, states.resumed)
}

func TestModelPauseFreezesBands(t *testing.T) {
	m := newTestModel(t, &manualStates{state: visualizer.StateSpeaking}, nil)
	m = press(m, " ")
	m = tick(m)

	assert.False(t, m.running)
	assert.Zero(t, m.Grid().OnCount())
	assert.Empty(t, m.history)
}

func TestModelThemeCycle(t *testing.T) {
	m := newTestModel(t, &manualStates{state: visualizer.StateSpeaking}, nil)
	m = press(m, "t")
	assert.Equal(t, NextTheme("mono").Name, m.theme.Name)
}

func TestModelRecordingSaves(t *testing.T) {
	store := storage.New(t.TempDir())
	m := newTestModel(t, &manualStates{state: visualizer.StateSpeaking}, store)

	m = press(m, "r")
	require.NotNil(t, m.recorder)
	m = tick(m)
	m = tick(m)
	m = press(m, "r")
	assert.Nil(t, m.recorder)
	assert.True(t, strings.HasPrefix(m.status, "saved test_"))

	sessions, err := store.List()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 2, sessions[0].Frames)
}

func TestModelViewRenders(t *testing.T) {
	m := newTestModel(t, &manualStates{state: visualizer.StateSpeaking}, nil)
	m = tick(m)
	m = tick(m)

	view := m.View()
	assert.Contains(t, view, "speaking")
	assert.Contains(t, view, glyphOn)
}

func TestHeaderTakesTwoLines(t *testing.T) {
	header := HeaderStyle.Render(GradientText("VOXGRID", "#ffffff", "#000000"))
	assert.Equal(t, 2, lipgloss.Height(header))
	assert.Contains(t, header, "─")
}

func TestModelQuitStopsAnimator(t *testing.T) {
	m := newTestModel(t, &manualStates{state: visualizer.StateListening}, nil)
	m = tick(m)
	require.Equal(t, visualizer.AnimatorActive, m.animator.State())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, visualizer.AnimatorPaused, m.animator.State())
	assert.Equal(t, visualizer.NoHighlight, m.animator.Index())
}

func TestRenderGridLayout(t *testing.T) {
	opts := ThemeMono.Apply(&visualizer.Options{})
	grid := visualizer.Render(visualizer.StateSpeaking, []float64{1, 1, 1}, visualizer.NoHighlight, opts)

	out := RenderGrid(grid, nil, 1, 2)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 6)
	assert.Equal(t, 5*2, strings.Count(out, glyphOn))
	assert.Empty(t, RenderGrid(visualizer.Grid{}, nil, 1, 1))
}

func TestThemeApplyStateOverrides(t *testing.T) {
	opts := ThemeOcean.Apply(&visualizer.Options{RowCount: 4})

	assert.Equal(t, 4, opts.RowCount)
	assert.NotNil(t, opts.Transformer)
	thinking := opts.ForState(visualizer.StateThinking)
	assert.Equal(t, string(ThemeOcean.Secondary), thinking.OnStyle.Foreground)
	offline := opts.ForState(visualizer.StateOffline)
	assert.Nil(t, offline.Transformer)
	assert.Same(t, opts, opts.ForState(visualizer.StateSpeaking))
}

func TestGetTheme(t *testing.T) {
	assert.Equal(t, "ocean", GetTheme("ocean").Name)
	assert.Equal(t, ThemeDefault.Name, GetTheme("missing").Name)
	assert.Equal(t, Themes[0].Name, NextTheme(Themes[len(Themes)-1].Name).Name)
	assert.Len(t, ThemeNames(), len(Themes))
}
