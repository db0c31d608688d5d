package keymap

import (
	"errors"
	"fmt"
	"slices"
)

// Keymap holds the ordered bindings of one mode.
type Keymap struct {
	// Name is the keymap identifier.
	Name string `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`

	// Mode is the mode this keymap applies to.
	Mode string `json:"mode" toml:"mode" yaml:"mode" jsonschema:"required,description=Mode the bindings apply to"`

	// Bindings are evaluated in order. Earlier bindings win ties.
	Bindings []Binding `json:"bindings" toml:"bindings" yaml:"bindings"`

	// Source indicates where this keymap was defined.
	// Examples: "default", "user", a file path
	Source string `json:"-" toml:"-" yaml:"-"`
}

// NewKeymap creates a new keymap for the given mode.
func NewKeymap(name, mode string) *Keymap {
	return &Keymap{
		Name:     name,
		Mode:     mode,
		Bindings: make([]Binding, 0),
	}
}

// WithSource sets the source for this keymap.
func (k *Keymap) WithSource(source string) *Keymap {
	k.Source = source
	return k
}

// Add adds a binding to this keymap.
func (k *Keymap) Add(keys, command string) *Keymap {
	k.Bindings = append(k.Bindings, NewBinding(keys, command))
	return k
}

// AddBinding adds a fully configured binding to this keymap.
func (k *Keymap) AddBinding(binding Binding) *Keymap {
	k.Bindings = append(k.Bindings, binding)
	return k
}

// Validate checks every binding and reports all problems at once.
func (k *Keymap) Validate() error {
	var errs []error
	if k.Mode == "" {
		errs = append(errs, errors.New("keymap has no mode"))
	}
	for i, b := range k.Bindings {
		if b.Command == "" {
			errs = append(errs, fmt.Errorf("binding %d (%s): empty command", i, b.Keys))
		}
		if b.IsScripted() {
			continue
		}
		if b.Keys == "" {
			errs = append(errs, fmt.Errorf("binding %d: empty keys", i))
			continue
		}
		if _, err := b.Tokens(); err != nil {
			errs = append(errs, fmt.Errorf("binding %d (%s): %w", i, b.Keys, err))
		}
	}
	return errors.Join(errs...)
}

// Clone creates a deep copy of the keymap.
func (k *Keymap) Clone() *Keymap {
	clone := *k
	clone.Bindings = slices.Clone(k.Bindings)
	return &clone
}
