package visualizer

import "time"

const (
	DefaultInterval = 100 * time.Millisecond
	DefaultSpacing  = 1
)

// Style holds the visual attributes of one cell. Zero fields mean "unset"
// so styles can be layered with Merge.
type Style struct {
	Glyph      string        `yaml:"glyph,omitempty"`
	Foreground string        `yaml:"foreground,omitempty"`
	Background string        `yaml:"background,omitempty"`
	Bold       bool          `yaml:"bold,omitempty"`
	Transition time.Duration `yaml:"transition,omitempty"`
}

// Merge returns s with every set field of over applied on top.
func (s Style) Merge(over Style) Style {
	if over.Glyph != "" {
		s.Glyph = over.Glyph
	}
	if over.Foreground != "" {
		s.Foreground = over.Foreground
	}
	if over.Background != "" {
		s.Background = over.Background
	}
	if over.Bold {
		s.Bold = true
	}
	if over.Transition != 0 {
		s.Transition = over.Transition
	}
	return s
}

// Transformer derives an extra style from a cell's distance to the grid center.
type Transformer func(distanceFromCenter float64) Style

// AnimationOptions tune the ambient animation and the cell transitions.
type AnimationOptions struct {
	Interval       time.Duration `yaml:"interval"`
	ConnectingRing int           `yaml:"connecting_ring"`
	OnTransition   time.Duration `yaml:"on_transition"`
	OffTransition  time.Duration `yaml:"off_transition"`
}

// TickInterval returns the configured interval or DefaultInterval.
func (a AnimationOptions) TickInterval() time.Duration {
	if a.Interval <= 0 {
		return DefaultInterval
	}
	return a.Interval
}

// GrowTransition is the transition attached to cells turning on.
func (a AnimationOptions) GrowTransition() time.Duration {
	if a.OnTransition > 0 {
		return a.OnTransition
	}
	return a.TickInterval()
}

// DecayTransition is the transition attached to cells turning off, ten times
// faster than growth unless overridden.
func (a AnimationOptions) DecayTransition() time.Duration {
	if a.OffTransition > 0 {
		return a.OffTransition
	}
	return a.TickInterval() / 10
}

// Options configure one render pass.
type Options struct {
	BaseStyle      Style
	OnStyle        Style
	OffStyle       Style
	HighlightStyle Style
	Transformer    Transformer

	// RowCount defaults to the number of bands when zero.
	RowCount    int
	GridSpacing int
	MinHeight   int
	MaxHeight   int
	Animation   AnimationOptions

	// StateOptions replace the whole option set for a given agent state.
	StateOptions map[AgentState]*Options
}

// ForState resolves per-state overrides. A nil receiver yields zero Options.
func (o *Options) ForState(state AgentState) *Options {
	if o == nil {
		return &Options{}
	}
	if override, ok := o.StateOptions[state]; ok && override != nil {
		return override
	}
	return o
}

// Rows returns the grid row count for the given column count.
func (o *Options) Rows(cols int) int {
	if o != nil && o.RowCount > 0 {
		return o.RowCount
	}
	return cols
}

// Spacing returns the gap between cells.
func (o *Options) Spacing() int {
	if o == nil || o.GridSpacing <= 0 {
		return DefaultSpacing
	}
	return o.GridSpacing
}

// CellHeight clamps a candidate cell height into [MinHeight, MaxHeight].
// Zero bounds are ignored.
func (o *Options) CellHeight(candidate int) int {
	if o == nil {
		return candidate
	}
	if o.MaxHeight > 0 && candidate > o.MaxHeight {
		candidate = o.MaxHeight
	}
	if o.MinHeight > 0 && candidate < o.MinHeight {
		candidate = o.MinHeight
	}
	return candidate
}

// Clone returns a shallow copy with its own StateOptions map.
func (o *Options) Clone() *Options {
	if o == nil {
		return &Options{}
	}
	c := *o
	if o.StateOptions != nil {
		c.StateOptions = make(map[AgentState]*Options, len(o.StateOptions))
		for k, v := range o.StateOptions {
			c.StateOptions[k] = v
		}
	}
	return &c
}
