// Package visualizer computes the grid audio visualization for a voice agent.
//
// The package is split into three pieces that run once per displayed frame:
//
//   - [NormalizeFrequencies]: maps raw per-band decibel readings into [0, 1]
//   - [Animator]: advances an ambient highlighted cell while the agent is not speaking
//   - [Render]: builds a rows x cols matrix of resolved [Style] values
//
// Render is a pure function of its inputs. The Animator is the only component
// that mutates state asynchronously; it owns the highlight index and hands out
// snapshots through [Animator.Index].
//
// # Example
//
//	anim := visualizer.NewAnimator(rows, cols, opts.Animation, &visualizer.StatePath{Ring: 1})
//	anim.Update(ctx, state)
//	defer anim.Stop()
//
//	volumes := visualizer.NormalizeFrequencies(bands)
//	grid := visualizer.Render(state, volumes, anim.Index(), opts)
//
// # Cell Indexing
//
// Highlight indices are row-major: index = row*cols + col.
package visualizer
