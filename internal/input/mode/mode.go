package mode

import (
	"strings"

	"github.com/dshills/modalkeys/internal/input/keymap"
)

// Standard mode names.
const (
	Normal = "normal"
	Insert = "insert"
	Hints  = "hints"
)

// Transition describes a mode switch. From is empty for the initial mode.
type Transition struct {
	From string
	To   string
}

// Hook is a mode lifecycle callback. An Enter hook may set up
// mode-specific state (e.g. compute hint labels); an Exit hook releases it.
type Hook func(tr Transition) error

// Mode is a named, exclusive input state that owns one Mapper.
type Mode struct {
	name    string
	mapper  *keymap.Mapper
	onEnter Hook
	onExit  Hook
}

// Name returns the unique mode identifier (e.g., "normal", "insert").
func (m *Mode) Name() string {
	return m.name
}

// DisplayName returns a human-readable name for the status line.
func (m *Mode) DisplayName() string {
	return strings.ToUpper(m.name)
}

// Mapper returns the mode's Mapper.
func (m *Mode) Mapper() *keymap.Mapper {
	return m.mapper
}

func (m *Mode) enter(tr Transition) error {
	if m.onEnter == nil {
		return nil
	}
	return m.onEnter(tr)
}

func (m *Mode) exit(tr Transition) error {
	m.mapper.ResetFull()
	if m.onExit == nil {
		return nil
	}
	return m.onExit(tr)
}

// DefaultPolicy returns the no-match policy of a built-in mode.
//
// Normal replays ordinary keys but swallows control chords, insert hands
// everything back to the host, and hints never lets a key through while
// labels are shown. Unknown modes replay.
func DefaultPolicy(name string) keymap.Policy {
	switch name {
	case Normal:
		return keymap.ReplayUnlessControl
	case Hints:
		return keymap.DiscardAll
	default:
		return keymap.ReplayAll
	}
}
