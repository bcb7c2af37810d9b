// Package viz renders the voice agent grid in the terminal.
//
// The package implements the live view using the Bubble Tea framework:
//
//   - [Model]: the live program, pulling bands and agent state every frame
//   - [Fader]: per-cell color easing driven by the cells' transition hints
//   - [Theme]: color schemes mapped onto visualizer styles
//
// # Key Bindings
//
//	1-5   - Force agent state (offline .. speaking)
//	A     - Resume the agent script
//	Space - Freeze/unfreeze audio
//	T     - Cycle color themes
//	R     - Toggle recording
//	?     - Show help overlay
//
// # Recording
//
// Recordings are written to the session store when recording stops and can
// be played back with the replay command.
package viz
