// Package keymap matches key tokens against the bound commands of a mode.
//
// # Key Concepts
//
// Mapping: one pattern state machine. The variants are Single (one
// token), Sequence (a fixed token run), Count (a leading decimal repeat
// count) and Custom (a predicate over the consumed tokens).
//
// Mapper: runs all mappings of a mode in parallel. Every token is fed to
// the live candidates in registration order; the first to accept wins and
// its action runs. When no candidate is left the Mapper applies its
// Policy and reports the abandoned tokens.
//
// Keymap: a named, ordered list of Bindings for a mode, loadable from
// JSON, TOML or YAML files.
//
// # Resets
//
// ResetFull restores every candidate and sets the count register back to
// "1". ResetPreservingCount does the same but keeps the register; the
// Count mapping uses it before re-feeding the token that ended the digits.
//
// # Usage
//
//	mp := keymap.NewMapper(keymap.ReplayUnlessControl,
//	    keymap.NewCount(),
//	    keymap.NewSingle("scroll.down", "<j>", down).WithRepeat(),
//	    keymap.NewSequence("scroll.top", []key.Token{"<g>", "<g>"}, top),
//	)
//
//	switch res := mp.Map(tok); res.Outcome {
//	case keymap.OutcomeUnmatched:
//	    // replay res.Unresolved
//	}
package keymap
