// Package mode provides the mode registry of the modal input engine.
//
// Three modes are built in:
//   - normal: commands, count prefixes, control chords are swallowed
//   - insert: keys go to the host except the exit key
//   - hints: link-hint selection, nothing reaches the host
//
// # Mode Lifecycle
//
//	┌─────────┐    Enter()    ┌─────────┐
//	│ Mode A  │ ───────────▶ │ Mode B  │
//	└─────────┘              └─────────┘
//	     │                        │
//	     │  Exit()                │
//	     ◀────────────────────────┘
//
// When switching modes:
// 1. Current mode's Mapper is fully reset and its Exit hook runs
// 2. New mode's Enter hook runs and its Mapper is fully reset
// 3. Mode change callbacks are notified
//
// Exactly one mode is current at a time; there is no terminal mode.
package mode
