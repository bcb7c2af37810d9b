package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/voxgrid/internal/visualizer"
)

const (
	glyphOn  = "██"
	glyphOff = "··"
)

// Theme defines the color scheme for the grid and the TUI chrome.
type Theme struct {
	Name       string
	Primary    lipgloss.Color // lit cells
	Secondary  lipgloss.Color // lit cells while thinking
	Accent     lipgloss.Color // highlight
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color // unlit cells
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color

	// Gradient tints cells from Primary at the center to Secondary at the edge.
	Gradient bool
}

// Available themes
var (
	ThemeDefault = Theme{
		Name:       "default",
		Primary:    lipgloss.Color("#1fd5f9"),
		Secondary:  lipgloss.Color("#a78bfa"),
		Accent:     lipgloss.Color("#ffffff"),
		Background: lipgloss.Color("#0a0a0a"),
		Text:       lipgloss.Color("#e5e5e5"),
		Muted:      lipgloss.Color("#3a3a3a"),
		Success:    lipgloss.Color("#00ff88"),
		Warning:    lipgloss.Color("#ffaa00"),
		Error:      lipgloss.Color("#ff4444"),
	}

	ThemeCyberpunk = Theme{
		Name:       "cyberpunk",
		Primary:    lipgloss.Color("#ff00ff"), // Magenta
		Secondary:  lipgloss.Color("#00ffff"), // Cyan
		Accent:     lipgloss.Color("#ffff00"), // Yellow
		Background: lipgloss.Color("#0a0a0a"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#444444"),
		Success:    lipgloss.Color("#00ff00"),
		Warning:    lipgloss.Color("#ff8800"),
		Error:      lipgloss.Color("#ff0000"),
		Gradient:   true,
	}

	ThemeMatrix = Theme{
		Name:       "matrix",
		Primary:    lipgloss.Color("#00ff00"), // Green phosphor
		Secondary:  lipgloss.Color("#00cc00"),
		Accent:     lipgloss.Color("#88ff88"),
		Background: lipgloss.Color("#001100"),
		Text:       lipgloss.Color("#00ff00"),
		Muted:      lipgloss.Color("#005500"),
		Success:    lipgloss.Color("#88ff88"),
		Warning:    lipgloss.Color("#ffff00"),
		Error:      lipgloss.Color("#ff0000"),
	}

	ThemeMono = Theme{
		Name:       "mono",
		Primary:    lipgloss.Color("#ffffff"),
		Secondary:  lipgloss.Color("#cccccc"),
		Accent:     lipgloss.Color("#0088ff"),
		Background: lipgloss.Color("#000000"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#555555"),
		Success:    lipgloss.Color("#00ff00"),
		Warning:    lipgloss.Color("#ffaa00"),
		Error:      lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:       "ocean",
		Primary:    lipgloss.Color("#00a8cc"), // Ocean blue
		Secondary:  lipgloss.Color("#0077be"),
		Accent:     lipgloss.Color("#ffd700"),
		Background: lipgloss.Color("#001a33"),
		Text:       lipgloss.Color("#e0f0ff"),
		Muted:      lipgloss.Color("#1d3f5a"),
		Success:    lipgloss.Color("#00ff88"),
		Warning:    lipgloss.Color("#ffcc00"),
		Error:      lipgloss.Color("#ff4444"),
		Gradient:   true,
	}

	ThemeSunset = Theme{
		Name:       "sunset",
		Primary:    lipgloss.Color("#ff6b6b"), // Coral
		Secondary:  lipgloss.Color("#feca57"),
		Accent:     lipgloss.Color("#ff9ff3"),
		Background: lipgloss.Color("#2d1b2e"),
		Text:       lipgloss.Color("#fff5f5"),
		Muted:      lipgloss.Color("#5b3b5c"),
		Success:    lipgloss.Color("#5fd068"),
		Warning:    lipgloss.Color("#ffc048"),
		Error:      lipgloss.Color("#ff4757"),
		Gradient:   true,
	}

	Themes = []Theme{
		ThemeDefault,
		ThemeCyberpunk,
		ThemeMatrix,
		ThemeMono,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the default theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDefault
}

// NextTheme returns the theme after name in Themes, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Apply returns a copy of geometry with the theme's cell styles and
// per-state overrides filled in.
func (t Theme) Apply(geometry *visualizer.Options) *visualizer.Options {
	opts := geometry.Clone()
	opts.StateOptions = nil
	opts.BaseStyle = visualizer.Style{Glyph: glyphOff, Foreground: string(t.Muted)}
	opts.OnStyle = visualizer.Style{Glyph: glyphOn, Foreground: string(t.Primary)}
	opts.OffStyle = visualizer.Style{Glyph: glyphOff, Foreground: string(t.Muted)}
	opts.HighlightStyle = visualizer.Style{Glyph: glyphOn, Foreground: string(t.Accent), Bold: true}
	if t.Gradient {
		opts.Transformer = t.gradient(opts.Rows(0))
	}

	thinking := opts.Clone()
	thinking.OnStyle.Foreground = string(t.Secondary)
	thinking.HighlightStyle.Foreground = string(t.Secondary)

	connecting := opts.Clone()
	connecting.HighlightStyle.Foreground = string(t.Warning)

	offline := opts.Clone()
	offline.Transformer = nil
	offline.OnStyle.Foreground = string(t.Muted)
	offline.HighlightStyle = visualizer.Style{}

	opts.StateOptions = map[visualizer.AgentState]*visualizer.Options{
		visualizer.StateThinking:   thinking,
		visualizer.StateConnecting: connecting,
		visualizer.StateOffline:    offline,
	}
	return opts
}

// gradient blends lit colors outward from the center. rows may be zero when
// the row count follows the band count; the blend then spans three cells.
func (t Theme) gradient(rows int) visualizer.Transformer {
	from, err1 := colorful.Hex(string(t.Primary))
	to, err2 := colorful.Hex(string(t.Secondary))
	if err1 != nil || err2 != nil {
		return nil
	}
	span := float64(rows) / 2
	if span < 1 {
		span = 3
	}
	return func(distance float64) visualizer.Style {
		f := distance / span
		if f > 1 {
			f = 1
		}
		if distance == 0 {
			return visualizer.Style{}
		}
		return visualizer.Style{Foreground: from.BlendLab(to, f).Clamped().Hex()}
	}
}
