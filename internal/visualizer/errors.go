package visualizer

import "errors"

// ErrUnknownState indicates a string that does not name an [AgentState].
var ErrUnknownState = errors.New("visualizer: unknown agent state")
