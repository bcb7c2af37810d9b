package config

import (
	"sort"
	"time"
)

// Presets are named visualizer setups. They only carry the visualizer
// section and the theme; everything else keeps the caller's values.
var Presets = map[string]*Config{
	"default": {
		Theme: "default",
		Visualizer: VisualizerConfig{
			Bands: 5, Spacing: 1, MinHeight: 1, MaxHeight: 3,
			Interval: 100 * time.Millisecond, ConnectingRing: 1, Path: "state",
		},
	},
	"compact": {
		Theme: "mono",
		Visualizer: VisualizerConfig{
			Bands: 3, Spacing: 1, MinHeight: 1, MaxHeight: 1,
			Interval: 150 * time.Millisecond, ConnectingRing: 1, Path: "state",
		},
	},
	"wide": {
		Theme: "ocean",
		Visualizer: VisualizerConfig{
			Bands: 9, Rows: 7, Spacing: 1, MinHeight: 1, MaxHeight: 2,
			Interval: 80 * time.Millisecond, ConnectingRing: 2, Path: "state",
		},
	},
	"radar": {
		Theme: "matrix",
		Visualizer: VisualizerConfig{
			Bands: 7, Spacing: 1, MinHeight: 1, MaxHeight: 2,
			Interval: 60 * time.Millisecond, ConnectingRing: 3, Path: "ring",
		},
	},
	"drift": {
		Theme: "sunset",
		Visualizer: VisualizerConfig{
			Bands: 7, Spacing: 2, MinHeight: 1, MaxHeight: 3,
			Interval: 200 * time.Millisecond, ConnectingRing: 1, Path: "walk", Seed: 7,
		},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset overlays a preset's visualizer section and theme onto c.
// Unknown names leave c untouched and report false.
func (c *Config) ApplyPreset(name string) bool {
	p := GetPreset(name)
	if p == nil {
		return false
	}
	c.Visualizer = p.Visualizer
	c.Theme = p.Theme
	return true
}
