package keymap

import (
	"github.com/dshills/modalkeys/internal/input/key"
)

// Binding maps a key specification to a named command.
type Binding struct {
	// Keys is the key specification that triggers this binding.
	// Formats: "j", "gg", "<C-d>", "<g><g>", "<2-LeftMouse>"
	Keys string `json:"keys,omitempty" toml:"keys,omitempty" yaml:"keys,omitempty" jsonschema:"description=Key specification such as gg or <C-d>"`

	// Command is the command to run.
	// Examples: "scroll.down", "mode.insert", "hints.follow"
	Command string `json:"command" toml:"command" yaml:"command" jsonschema:"required,description=Name of the command to run"`

	// Repeat multiplies the command by the typed count prefix.
	Repeat bool `json:"repeat,omitempty" toml:"repeat,omitempty" yaml:"repeat,omitempty" jsonschema:"description=Run the command count times"`

	// Description documents the binding for listings.
	Description string `json:"description,omitempty" toml:"description,omitempty" yaml:"description,omitempty"`

	// Lua is a predicate chunk used instead of Keys. See the lua plugin
	// package for its contract.
	Lua string `json:"lua,omitempty" toml:"lua,omitempty" yaml:"lua,omitempty" jsonschema:"description=Lua predicate source used instead of keys"`
}

// NewBinding creates a new binding with the given keys and command.
func NewBinding(keys, command string) Binding {
	return Binding{
		Keys:    keys,
		Command: command,
	}
}

// WithRepeat marks the binding as repeated.
func (b Binding) WithRepeat() Binding {
	b.Repeat = true
	return b
}

// WithDescription sets the description for this binding.
func (b Binding) WithDescription(desc string) Binding {
	b.Description = desc
	return b
}

// WithLua sets the Lua predicate for this binding.
func (b Binding) WithLua(src string) Binding {
	b.Lua = src
	return b
}

// IsScripted returns true if the binding matches through a Lua predicate.
func (b Binding) IsScripted() bool {
	return b.Lua != ""
}

// Tokens parses Keys into canonical tokens.
func (b Binding) Tokens() ([]key.Token, error) {
	return key.ParseSpec(b.Keys)
}

// Mapping builds the Single or Sequence mapping for a key binding.
func (b Binding) Mapping(action Action) (Mapping, error) {
	tokens, err := b.Tokens()
	if err != nil {
		return nil, err
	}
	if len(tokens) == 1 {
		m := NewSingle(b.Command, tokens[0], action)
		if b.Repeat {
			m.WithRepeat()
		}
		return m, nil
	}
	m := NewSequence(b.Command, tokens, action)
	if b.Repeat {
		m.WithRepeat()
	}
	return m, nil
}
