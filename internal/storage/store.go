package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/voxgrid/internal/visualizer"
)

// ErrNoFrames is returned when saving an empty recording.
var ErrNoFrames = errors.New("storage: recording has no frames")

// Store keeps recorded sessions under a base directory, one directory per
// session holding metadata.json and frames.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Frame is one captured audio frame with the agent state at that moment.
type Frame struct {
	Time  float64
	State visualizer.AgentState
	Bands []float64
}

type SessionMetadata struct {
	ID        string                        `json:"id"`
	Source    string                        `json:"source"`
	Timestamp time.Time                     `json:"timestamp"`
	Bands     int                           `json:"bands"`
	Frames    int                           `json:"frames"`
	Duration  float64                       `json:"duration"`
	States    map[visualizer.AgentState]int `json:"states"`
}

func (s *Store) Save(source string, frames []Frame) (string, error) {
	if len(frames) == 0 {
		return "", ErrNoFrames
	}

	sessionID := fmt.Sprintf("%s_%d", source, time.Now().UnixNano())
	sessionDir := filepath.Join(s.baseDir, sessionID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return "", err
	}

	meta := SessionMetadata{
		ID:        sessionID,
		Source:    source,
		Timestamp: time.Now(),
		Bands:     len(frames[0].Bands),
		Frames:    len(frames),
		Duration:  frames[len(frames)-1].Time - frames[0].Time,
		States:    make(map[visualizer.AgentState]int),
	}
	for _, f := range frames {
		meta.States[f.State]++
	}

	if err := writeJSON(filepath.Join(sessionDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(sessionDir, "frames.csv"), frames); err != nil {
		return "", err
	}
	return sessionID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, frames []Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"time", "state"}
	for i := range frames[0].Bands {
		header = append(header, fmt.Sprintf("b%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, fr := range frames {
		row := []string{strconv.FormatFloat(fr.Time, 'f', 6, 64), string(fr.State)}
		for _, v := range fr.Bands {
			// -Inf round-trips through strconv as "-Inf"
			row = append(row, strconv.FormatFloat(v, 'f', 3, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable session, newest first.
func (s *Store) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionMetadata{}, nil
		}
		return nil, err
	}

	sessions := make([]SessionMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		sessions = append(sessions, *meta)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
	return sessions, nil
}

func (s *Store) Load(sessionID string) (*SessionMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, sessionID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames reads a session's frames. Rows that fail to parse are skipped.
func (s *Store) LoadFrames(sessionID string) ([]Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, sessionID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Frame{}, nil
	}

	frames := make([]Frame, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		state, err := visualizer.ParseAgentState(record[1])
		if err != nil {
			continue
		}
		bands := make([]float64, 0, len(record)-2)
		for _, field := range record[2:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				v = visualizer.Silence
			}
			bands = append(bands, v)
		}
		frames = append(frames, Frame{Time: t, State: state, Bands: bands})
	}
	return frames, nil
}
