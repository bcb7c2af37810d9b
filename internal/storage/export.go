package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/voxgrid/internal/visualizer"
)

type ExportFrame struct {
	Time       float64               `json:"time"`
	State      visualizer.AgentState `json:"state"`
	Normalized []float64             `json:"normalized"`
	Intensity  float64               `json:"intensity"`
}

type ExportData struct {
	Session SessionMetadata `json:"session"`
	Frames  []ExportFrame   `json:"frames"`
}

// ExportJSON writes a session with normalized levels per frame. Raw levels
// are not exported because silence has no JSON representation.
func ExportJSON(w io.Writer, meta SessionMetadata, frames []Frame) error {
	data := ExportData{
		Session: meta,
		Frames:  make([]ExportFrame, len(frames)),
	}
	for i, f := range frames {
		norm := visualizer.NormalizeFrequencies(f.Bands)
		data.Frames[i] = ExportFrame{
			Time:       f.Time,
			State:      f.State,
			Normalized: norm,
			Intensity:  visualizer.Intensity(norm),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// IntensitySeries returns the intensity of every frame, for plotting.
func IntensitySeries(frames []Frame) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = visualizer.Intensity(visualizer.NormalizeFrequencies(f.Bands))
	}
	return out
}
