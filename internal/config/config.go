package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/voxgrid/internal/logging"
	"github.com/san-kum/voxgrid/internal/visualizer"
)

const (
	DefaultBands     = 5
	DefaultFrameRate = 30
	DefaultTheme     = "default"
	DefaultPath      = "state"
	DefaultBackend   = "http://localhost:5000"
	DefaultTimeout   = 60 * time.Second
)

// Source kinds.
const (
	SourceSynthetic = "synthetic"
	SourceMic       = "mic"
	SourceReplay    = "replay"
)

type Config struct {
	Visualizer VisualizerConfig `yaml:"visualizer"`
	Theme      string           `yaml:"theme"`
	Source     SourceConfig     `yaml:"source"`
	Agent      AgentConfig      `yaml:"agent"`
	Backend    BackendConfig    `yaml:"backend"`
	DataDir    string           `yaml:"data_dir"`
	FrameRate  int              `yaml:"frame_rate"`
	Log        logging.Config   `yaml:"log"`
}

type VisualizerConfig struct {
	Bands          int           `yaml:"bands"`
	Rows           int           `yaml:"rows"`
	Spacing        int           `yaml:"spacing"`
	MinHeight      int           `yaml:"min_height"`
	MaxHeight      int           `yaml:"max_height"`
	Interval       time.Duration `yaml:"interval"`
	ConnectingRing int           `yaml:"connecting_ring"`
	Path           string        `yaml:"path"`
	Seed           int64         `yaml:"seed"`
}

type SourceConfig struct {
	Kind    string `yaml:"kind"`
	Session string `yaml:"session"`
	Loop    bool   `yaml:"loop"`
}

type AgentConfig struct {
	Initial      string `yaml:"initial"`
	ScenarioFile string `yaml:"scenario_file"`
}

type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Visualizer: VisualizerConfig{
			Bands:          DefaultBands,
			Spacing:        visualizer.DefaultSpacing,
			MinHeight:      1,
			MaxHeight:      3,
			Interval:       visualizer.DefaultInterval,
			ConnectingRing: 1,
			Path:           DefaultPath,
			Seed:           1,
		},
		Theme: DefaultTheme,
		Source: SourceConfig{
			Kind: SourceSynthetic,
			Loop: true,
		},
		Agent: AgentConfig{
			Initial: string(visualizer.StateConnecting),
		},
		Backend: BackendConfig{
			URL:     DefaultBackend,
			Timeout: DefaultTimeout,
		},
		DataDir:   filepath.Join(home, ".voxgrid", "data"),
		FrameRate: DefaultFrameRate,
		Log:       logging.DefaultConfig(),
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error

	v := c.Visualizer
	if v.Bands <= 0 {
		errs = append(errs, fmt.Errorf("visualizer.bands must be positive, got %d", v.Bands))
	}
	if v.Rows < 0 {
		errs = append(errs, fmt.Errorf("visualizer.rows must not be negative, got %d", v.Rows))
	}
	if v.MinHeight > 0 && v.MaxHeight > 0 && v.MinHeight > v.MaxHeight {
		errs = append(errs, fmt.Errorf("visualizer.min_height %d exceeds max_height %d", v.MinHeight, v.MaxHeight))
	}
	if v.Interval < 0 {
		errs = append(errs, errors.New("visualizer.interval must not be negative"))
	}
	switch v.Path {
	case "", "state", "raster", "ring", "walk":
	default:
		errs = append(errs, fmt.Errorf("unknown visualizer.path %q", v.Path))
	}

	switch c.Source.Kind {
	case SourceSynthetic, SourceMic:
	case SourceReplay:
		if c.Source.Session == "" {
			errs = append(errs, errors.New("source.session is required for replay"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source.kind %q", c.Source.Kind))
	}

	if c.Agent.Initial != "" {
		if _, err := visualizer.ParseAgentState(c.Agent.Initial); err != nil {
			errs = append(errs, fmt.Errorf("agent.initial: %w", err))
		}
	}
	if c.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame_rate must be positive, got %d", c.FrameRate))
	}

	return errors.Join(errs...)
}

// InitialState returns the configured starting agent state, offline when unset.
func (c *Config) InitialState() visualizer.AgentState {
	s, err := visualizer.ParseAgentState(c.Agent.Initial)
	if err != nil {
		return visualizer.StateOffline
	}
	return s
}

// Options returns the geometry and animation part of the render options.
// Styles come from the selected theme.
func (c *Config) Options() *visualizer.Options {
	v := c.Visualizer
	return &visualizer.Options{
		RowCount:    v.Rows,
		GridSpacing: v.Spacing,
		MinHeight:   v.MinHeight,
		MaxHeight:   v.MaxHeight,
		Animation: visualizer.AnimationOptions{
			Interval:       v.Interval,
			ConnectingRing: v.ConnectingRing,
		},
	}
}

// Path builds the animator path strategy.
func (c *Config) Path() visualizer.Path {
	return visualizer.NewPath(c.Visualizer.Path, c.Visualizer.ConnectingRing, c.Visualizer.Seed)
}

// FrameInterval is the host redraw period.
func (c *Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.FrameRate)
}
