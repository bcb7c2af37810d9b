package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"

	"github.com/san-kum/voxgrid/internal/audio"
	"github.com/san-kum/voxgrid/internal/logging"
	"github.com/san-kum/voxgrid/internal/storage"
	"github.com/san-kum/voxgrid/internal/visualizer"
)

const (
	historyCapacity = 120
	recordLimit     = 30 * 60 * 30
	chromeLines     = 6
)

var (
	gridStyle  = lipgloss.NewStyle().Padding(1, 2)
	statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// StateSource reports the agent state to display.
type StateSource interface {
	State() visualizer.AgentState
}

// StateController is a StateSource that accepts manual overrides.
type StateController interface {
	StateSource
	Set(visualizer.AgentState)
	Resume()
}

// Session wires the live view to its inputs.
type Session struct {
	Source        audio.Source
	Bands         int
	States        StateSource
	Geometry      *visualizer.Options
	Path          visualizer.Path
	Theme         string
	SourceName    string
	Store         *storage.Store
	FrameInterval time.Duration
	Logger        *logging.Logger
}

type TickMsg time.Time

// Model is the bubbletea program state of the live visualizer.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	session  Session
	theme    Theme
	opts     *visualizer.Options
	animator *visualizer.Animator
	fader    *Fader
	log      zerolog.Logger

	state     visualizer.AgentState
	bands     []float64
	history   []float64
	running   bool
	recorder  *storage.Recorder
	status    string
	frame     int
	width     int
	height    int
	showHelp  bool
}

// NewModel builds the live view. Bands render as silence of Session.Bands
// width until the source delivers its first frame.
func NewModel(s Session) Model {
	if s.FrameInterval <= 0 {
		s.FrameInterval = time.Second / 30
	}
	if s.Geometry == nil {
		s.Geometry = &visualizer.Options{}
	}
	if s.Logger == nil {
		s.Logger = logging.Nop()
	}

	s.Source = audio.Hold(s.Source, s.Bands)
	cols := len(s.Source.Bands())
	theme := GetTheme(s.Theme)
	opts := theme.Apply(s.Geometry)
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		ctx:      ctx,
		cancel:   cancel,
		session:  s,
		theme:    theme,
		opts:     opts,
		animator: visualizer.NewAnimator(opts.Rows(cols), cols, opts.Animation, s.Path),
		fader:    NewFader(),
		log:      s.Logger.Component("tui"),
		bands:    visualizer.SilentBands(cols),
		history:  make([]float64, 0, historyCapacity),
		running:  true,
		height:   24,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.session.FrameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and advances one frame per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case TickMsg:
		m.step(time.Time(msg))
		return m, m.tick()
	}
	return m, nil
}

var stateKeys = map[string]visualizer.AgentState{
	"1": visualizer.StateOffline,
	"2": visualizer.StateConnecting,
	"3": visualizer.StateListening,
	"4": visualizer.StateThinking,
	"5": visualizer.StateSpeaking,
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if state, ok := stateKeys[key]; ok {
		if ctrl, ok := m.session.States.(StateController); ok {
			ctrl.Set(state)
			m.status = "manual: " + string(state)
		}
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		m.Shutdown()
		return m, tea.Quit
	case "a":
		if ctrl, ok := m.session.States.(StateController); ok {
			ctrl.Resume()
			m.status = "following script"
		}
	case " ":
		m.running = !m.running
	case "t":
		m.theme = NextTheme(m.theme.Name)
		m.opts = m.theme.Apply(m.session.Geometry)
		m.status = "theme: " + m.theme.Name
	case "r":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// Shutdown stops the animator. It is safe to call more than once.
func (m Model) Shutdown() {
	m.animator.Stop()
	m.cancel()
}

func (m *Model) toggleRecording() {
	if m.recorder == nil {
		m.recorder = storage.NewRecorder(recordLimit)
		m.status = "recording"
		m.log.Info().Msg("recording started")
		return
	}

	frames := m.recorder.Frames()
	m.recorder = nil
	if m.session.Store == nil {
		m.status = "recording discarded (no store)"
		return
	}
	id, err := m.session.Store.Save(m.session.SourceName, frames)
	if err != nil {
		m.status = "save failed: " + err.Error()
		m.log.Error().Err(err).Msg("failed to save recording")
		return
	}
	m.status = "saved " + id
	m.log.Info().Str("session", id).Int("frames", len(frames)).Msg("recording saved")
}

// step pulls the latest bands and agent state.
func (m *Model) step(now time.Time) {
	m.frame++

	state := visualizer.StateOffline
	if m.session.States != nil {
		state = m.session.States.State()
	}
	if state != m.state || m.frame == 1 {
		m.state = state
		m.animator.Update(m.ctx, state)
	}

	if !m.running {
		return
	}
	bands := m.session.Source.Bands()
	if len(bands) != len(m.bands) {
		m.animator.Resize(m.opts.Rows(len(bands)), len(bands))
		m.fader.Reset()
	}
	m.bands = bands

	intensity := visualizer.Intensity(visualizer.NormalizeFrequencies(bands))
	m.history = append(m.history, intensity)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	if m.recorder != nil {
		m.recorder.Add(now, state, bands)
	}
}

// Grid renders the current frame.
func (m Model) Grid() visualizer.Grid {
	return visualizer.Render(m.state, visualizer.NormalizeFrequencies(m.bands), m.animator.Index(), m.opts)
}

func (m Model) View() string {
	grid := m.Grid()
	colors := m.fader.Step(grid, time.Now())

	cellHeight := 1
	if grid.Rows > 0 {
		cellHeight = m.opts.CellHeight((m.height - chromeLines) / grid.Rows)
	}
	gridView := gridStyle.Render(RenderGrid(grid, colors, m.opts.Spacing(), cellHeight))

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(GradientText("VOXGRID", m.theme.Primary, m.theme.Secondary)) + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(4),
			asciigraph.Width(30),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(1),
			asciigraph.Caption("Intensity"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(MetricLabel.Render("Agent") + MetricValue.Render(string(m.state)) + "\n")
	s.WriteString(MetricLabel.Render("Animator") + MetricValue.Render(string(m.animator.State())) + "\n")
	s.WriteString(MetricLabel.Render("Highlight") + MetricValue.Render(highlightLabel(m.animator.Index())) + "\n")
	s.WriteString(MetricLabel.Render("Level") + ProgressBar(grid.Intensity, 16) + "\n")
	s.WriteString(MetricLabel.Render("Lit") + MetricValue.Render(fmt.Sprintf("%d/%d", grid.OnCount(), grid.Rows*grid.Cols)) + "\n")
	s.WriteString(MetricLabel.Render("Theme") + MetricValue.Render(m.theme.Name) + "\n")

	if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}
	if last := m.session.Logger.History(1); len(last) == 1 {
		s.WriteString(Subtle.Render(truncate(last[0].Message, 40)) + "\n")
	}
	s.WriteString(helpStyle.Render(Separator(30) + "\n1-5:State A:Script SP:Pause\nT:Theme R:Record ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, gridView, statsStyle.Render(s.String()))
	if m.showHelp {
		return GlassPanel.Render(helpText) + "\n\n" + mainView
	}
	return mainView
}

func (m Model) statusLine() string {
	var parts []string
	if m.running {
		parts = append(parts, StatusRunning.Render(AnimatedSpinner(m.frame)+" LIVE"))
	} else {
		parts = append(parts, StatusPaused.Render("PAUSED"))
	}
	if m.recorder != nil {
		parts = append(parts, StatusRecording.Render(fmt.Sprintf("● REC %d", m.recorder.Len())))
	}
	if ctrl, ok := m.session.States.(interface{ Manual() bool }); ok && ctrl.Manual() {
		parts = append(parts, KeyHint.Render("manual"))
	}
	return strings.Join(parts, "  ")
}

const helpText = `KEYBOARD SHORTCUTS

  1-5      Set agent state (offline, connecting,
           listening, thinking, speaking)
  A        Resume the agent script
  Space    Freeze/unfreeze audio
  T        Cycle themes
  R        Start/stop recording (saved on stop)
  ?        Toggle this help
  Q        Quit`

func highlightLabel(i int) string {
	if i == visualizer.NoHighlight {
		return "none"
	}
	return fmt.Sprintf("%d", i)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run starts the live program on the alternate screen and blocks until
// the user quits.
func Run(s Session) error {
	m := NewModel(s)
	defer m.Shutdown()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
