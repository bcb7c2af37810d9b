package visualizer

import (
	"fmt"
	"strings"
)

// AgentState is the conversational state of the remote agent.
type AgentState string

const (
	StateOffline    AgentState = "offline"
	StateConnecting AgentState = "connecting"
	StateListening  AgentState = "listening"
	StateThinking   AgentState = "thinking"
	StateSpeaking   AgentState = "speaking"
)

// AgentStates lists every state in display order.
var AgentStates = []AgentState{
	StateOffline,
	StateConnecting,
	StateListening,
	StateThinking,
	StateSpeaking,
}

// ParseAgentState resolves a case-insensitive state name.
func ParseAgentState(s string) (AgentState, error) {
	name := AgentState(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range AgentStates {
		if st == name {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownState, s)
}

func (s AgentState) String() string { return string(s) }

// GridAnimatorState reports whether the ambient highlight is advancing.
type GridAnimatorState string

const (
	AnimatorActive GridAnimatorState = "active"
	AnimatorPaused GridAnimatorState = "paused"
)

// AnimatorStateFor returns the animator mode implied by an agent state:
// real audio takes over while the agent speaks.
func AnimatorStateFor(s AgentState) GridAnimatorState {
	if s == StateSpeaking {
		return AnimatorPaused
	}
	return AnimatorActive
}
