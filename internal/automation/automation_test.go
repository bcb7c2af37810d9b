package automation

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/voxgrid/internal/visualizer"
)

func TestScenarioStateAt(t *testing.T) {
	s := &Scenario{
		Loop: true,
		Steps: []ScenarioStep{
			{State: visualizer.StateConnecting, Duration: time.Second},
			{State: visualizer.StateListening, Duration: 2 * time.Second},
		},
	}

	tests := []struct {
		at   time.Duration
		want visualizer.AgentState
	}{
		{0, visualizer.StateConnecting},
		{999 * time.Millisecond, visualizer.StateConnecting},
		{time.Second, visualizer.StateListening},
		{2900 * time.Millisecond, visualizer.StateListening},
		{3 * time.Second, visualizer.StateConnecting},
		{-time.Second, visualizer.StateConnecting},
	}
	for _, tt := range tests {
		if got := s.StateAt(tt.at); got != tt.want {
			t.Errorf("StateAt(%s) = %s, want %s", tt.at, got, tt.want)
		}
	}

	s.Loop = false
	if got := s.StateAt(10 * time.Second); got != visualizer.StateListening {
		t.Errorf("one-shot should hold last step, got %s", got)
	}

	empty := &Scenario{}
	if got := empty.StateAt(time.Second); got != visualizer.StateOffline {
		t.Errorf("empty scenario should be offline, got %s", got)
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "turn.yaml")
	data := `name: turn
loop: true
steps:
  - state: listening
    duration: 1s
  - state: " Speaking"
    duration: 1500ms
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(s.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(s.Steps))
	}
	if s.Steps[1].Duration != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %s", s.Steps[1].Duration)
	}
	if s.Total() != 2500*time.Millisecond {
		t.Errorf("unexpected total %s", s.Total())
	}
	if s.Steps[1].State != visualizer.StateSpeaking {
		t.Errorf("expected state to be canonicalized, got %q", s.Steps[1].State)
	}
	if got := visualizer.AnimatorStateFor(s.StateAt(time.Second)); got != visualizer.AnimatorPaused {
		t.Errorf("speaking step should pause the animator, got %s", got)
	}
}

func TestLoadScenario_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown.yaml": "steps:\n  - state: dancing\n    duration: 1s\n",
		"zero.yaml":    "steps:\n  - state: speaking\n    duration: 0s\n",
		"empty.yaml":   "name: nothing\n",
		"notyaml.yaml": "steps: [",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadScenario(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, err := LoadScenario(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultScenarioIsValid(t *testing.T) {
	if err := DefaultScenario().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestFeed_ManualOverride(t *testing.T) {
	f := NewFeed(DefaultScenario(), visualizer.StateOffline, zerolog.Nop())

	var mu sync.Mutex
	var changes []visualizer.AgentState
	f.OnChange(func(s visualizer.AgentState) {
		mu.Lock()
		changes = append(changes, s)
		mu.Unlock()
	})

	f.Set(visualizer.StateThinking)
	if f.State() != visualizer.StateThinking || !f.Manual() {
		t.Fatalf("expected manual thinking, got %s manual=%v", f.State(), f.Manual())
	}
	f.Set(visualizer.StateThinking)

	mu.Lock()
	if len(changes) != 1 {
		t.Errorf("expected one change notification, got %d", len(changes))
	}
	mu.Unlock()

	f.Resume()
	if f.Manual() {
		t.Error("expected scenario control after Resume")
	}
}

func TestFeed_AdvanceKeepsManualState(t *testing.T) {
	f := NewFeed(DefaultScenario(), visualizer.StateOffline, zerolog.Nop())

	f.advance(0)
	if got := f.State(); got != visualizer.StateConnecting {
		t.Fatalf("expected scripted connecting, got %s", got)
	}

	f.Set(visualizer.StateSpeaking)
	f.advance(4 * time.Second)
	if got := f.State(); got != visualizer.StateSpeaking {
		t.Errorf("scripted step overwrote manual state: %s", got)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			f.advance(time.Duration(i) * time.Second)
		}
	}()
	go func() {
		defer wg.Done()
		f.Set(visualizer.StateThinking)
	}()
	wg.Wait()
	if got := f.State(); got != visualizer.StateThinking {
		t.Errorf("expected manual thinking to stick, got %s", got)
	}
}

func TestFeed_RunFollowsScenario(t *testing.T) {
	s := &Scenario{
		Steps: []ScenarioStep{
			{State: visualizer.StateConnecting, Duration: 30 * time.Millisecond},
			{State: visualizer.StateSpeaking, Duration: time.Hour},
		},
	}
	f := NewFeed(s, visualizer.StateOffline, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx, 5*time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for f.State() != visualizer.StateSpeaking {
		select {
		case <-deadline:
			t.Fatalf("feed never reached speaking, stuck at %s", f.State())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFeed_ManualWithoutScenario(t *testing.T) {
	f := NewFeed(nil, visualizer.StateListening, zerolog.Nop())
	if !f.Manual() {
		t.Error("feed without scenario should be manual")
	}
	f.Resume()
	if !f.Manual() {
		t.Error("Resume without scenario should stay manual")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.Run(ctx, time.Millisecond); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFeed_WatchReloadsScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yaml")
	write := func(name string) {
		t.Helper()
		data := "name: " + name + "\nloop: true\nsteps:\n  - state: thinking\n    duration: 1s\n"
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("first")

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	feed := NewFeed(s, visualizer.StateOffline, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feed.Watch(ctx, path) }()

	deadline := time.Now().Add(3 * time.Second)
	for feed.Scenario().Name != "second" {
		if time.Now().After(deadline) {
			t.Fatal("scenario was not reloaded")
		}
		// rewrite until the watcher has registered
		write("second")
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
