// Package automation scripts agent state changes for demos and recordings.
package automation

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/voxgrid/internal/visualizer"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of agent states.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Loop        bool           `yaml:"loop"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep holds one agent state for a duration.
type ScenarioStep struct {
	State    visualizer.AgentState `yaml:"state"`
	Duration time.Duration         `yaml:"duration"`
}

// DefaultScenario walks through a typical voice turn.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name:        "conversation",
		Description: "connect, then alternate listening, thinking and speaking",
		Loop:        true,
		Steps: []ScenarioStep{
			{State: visualizer.StateConnecting, Duration: 3 * time.Second},
			{State: visualizer.StateListening, Duration: 4 * time.Second},
			{State: visualizer.StateThinking, Duration: 2 * time.Second},
			{State: visualizer.StateSpeaking, Duration: 6 * time.Second},
		},
	}
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scenario, nil
}

// Validate checks every step names a known state with a positive duration
// and rewrites each state into its canonical form.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}
	for i, step := range s.Steps {
		state, err := visualizer.ParseAgentState(string(step.State))
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		s.Steps[i].State = state
		if step.Duration <= 0 {
			return fmt.Errorf("step %d: duration must be positive, got %s", i+1, step.Duration)
		}
	}
	return nil
}

// Total returns the length of one pass through the steps.
func (s *Scenario) Total() time.Duration {
	var total time.Duration
	for _, step := range s.Steps {
		total += step.Duration
	}
	return total
}

// StateAt returns the scripted state elapsed into the scenario. Past the end
// a looping scenario wraps and a one-shot scenario holds its last step.
func (s *Scenario) StateAt(elapsed time.Duration) visualizer.AgentState {
	if len(s.Steps) == 0 {
		return visualizer.StateOffline
	}
	total := s.Total()
	if total <= 0 {
		return s.Steps[0].State
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= total {
		if !s.Loop {
			return s.Steps[len(s.Steps)-1].State
		}
		elapsed %= total
	}
	for _, step := range s.Steps {
		if elapsed < step.Duration {
			return step.State
		}
		elapsed -= step.Duration
	}
	return s.Steps[len(s.Steps)-1].State
}

// Feed publishes the current agent state. It follows a scenario until a
// manual state is set, and returns to the scenario on Resume.
type Feed struct {
	mu       sync.RWMutex
	scenario *Scenario
	current  visualizer.AgentState
	manual   bool
	onChange func(visualizer.AgentState)
	log      zerolog.Logger
}

// NewFeed creates a feed starting in the initial state. A nil scenario makes
// the feed purely manual.
func NewFeed(scenario *Scenario, initial visualizer.AgentState, log zerolog.Logger) *Feed {
	return &Feed{
		scenario: scenario,
		current:  initial,
		manual:   scenario == nil,
		log:      log.With().Str("component", "agent").Logger(),
	}
}

// OnChange registers a callback fired on every state transition.
func (f *Feed) OnChange(fn func(visualizer.AgentState)) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

// State returns the current agent state.
func (f *Feed) State() visualizer.AgentState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// Manual reports whether a manual override is in effect.
func (f *Feed) Manual() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.manual
}

// Set overrides the scenario with a fixed state.
func (f *Feed) Set(state visualizer.AgentState) {
	f.mu.Lock()
	f.manual = true
	f.apply(state)
}

// Resume hands control back to the scenario.
func (f *Feed) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scenario != nil {
		f.manual = false
	}
}

// advance moves to the scripted state at offset unless a manual override
// holds. The override is checked under the same lock as the write, so a
// concurrent Set always wins.
func (f *Feed) advance(offset time.Duration) {
	f.mu.Lock()
	if f.manual || f.scenario == nil {
		f.mu.Unlock()
		return
	}
	f.apply(f.scenario.StateAt(offset))
}

// apply must be called with f.mu held; it releases the lock before the
// change callback runs.
func (f *Feed) apply(state visualizer.AgentState) {
	if f.current == state {
		f.mu.Unlock()
		return
	}
	prev := f.current
	f.current = state
	fn := f.onChange
	f.mu.Unlock()

	f.log.Debug().Str("from", string(prev)).Str("to", string(state)).Msg("agent state changed")
	if fn != nil {
		fn(state)
	}
}

// Scenario returns the scenario being followed, nil for a manual feed.
func (f *Feed) Scenario() *Scenario {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.scenario
}

// SetScenario swaps the script. The timeline keeps its start, so the new
// steps pick up at the current offset.
func (f *Feed) SetScenario(s *Scenario) {
	f.mu.Lock()
	f.scenario = s
	f.mu.Unlock()
	f.log.Info().Str("scenario", s.Name).Int("steps", len(s.Steps)).Msg("scenario replaced")
}

// Run advances the scenario every interval until ctx is done.
func (f *Feed) Run(ctx context.Context, interval time.Duration) error {
	if f.Scenario() == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	first := f.Scenario()
	f.log.Info().Str("scenario", first.Name).Int("steps", len(first.Steps)).Msg("scenario started")
	for {
		f.advance(time.Since(start))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
