package mode

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/modalkeys/internal/input/keymap"
)

// Registry errors
var (
	ErrUnknownMode   = errors.New("unknown mode")
	ErrDuplicateMode = errors.New("mode already registered")
	ErrNoMode        = errors.New("no current mode")
)

// ChangeCallback is called after the mode changed.
type ChangeCallback func(tr Transition)

// Registry holds the modes by name and the single current mode.
//
// Modes never reference each other; they switch through the Registry.
// A Registry is not safe for concurrent use; Switch may be called from
// inside a mapping action.
type Registry struct {
	// modes holds all registered modes by name.
	modes map[string]*Mode

	// order is the registration order of mode names.
	order []string

	current  *Mode
	previous *Mode

	// callbacks are notified on mode changes.
	callbacks []ChangeCallback
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modes: make(map[string]*Mode),
	}
}

// Register adds a mode owning mapper. Either hook may be nil.
func (r *Registry) Register(name string, mapper *keymap.Mapper, onEnter, onExit Hook) (*Mode, error) {
	if name == "" {
		return nil, errors.New("mode name is empty")
	}
	if mapper == nil {
		return nil, fmt.Errorf("mode %s: nil mapper", name)
	}
	if _, ok := r.modes[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateMode, name)
	}

	m := &Mode{name: name, mapper: mapper, onEnter: onEnter, onExit: onExit}
	r.modes[name] = m
	r.order = append(r.order, name)
	return m, nil
}

// Get returns a mode by name.
func (r *Registry) Get(name string) (*Mode, bool) {
	m, ok := r.modes[name]
	return m, ok
}

// Current returns the current mode, or nil before SetInitial.
func (r *Registry) Current() *Mode {
	return r.current
}

// CurrentName returns the name of the current mode.
// Returns empty string if no mode is set.
func (r *Registry) CurrentName() string {
	if r.current == nil {
		return ""
	}
	return r.current.name
}

// PreviousName returns the name of the mode before the current one.
func (r *Registry) PreviousName() string {
	if r.previous == nil {
		return ""
	}
	return r.previous.name
}

// IsMode returns true if the current mode matches the given name.
func (r *Registry) IsMode(name string) bool {
	return r.current != nil && r.current.name == name
}

// Names returns the registered mode names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// SetInitial makes name the current mode, running its Enter hook and
// resetting its Mapper. No Exit hook runs.
func (r *Registry) SetInitial(name string) error {
	m, ok := r.modes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}

	tr := Transition{To: name}
	if err := m.enter(tr); err != nil {
		return fmt.Errorf("enter %s: %w", name, err)
	}
	m.mapper.ResetFull()
	r.current = m
	r.notify(tr)
	return nil
}

// Switch exits the current mode and enters name. The outgoing Mapper is
// fully reset before its Exit hook, and the incoming Mapper after the
// Enter hook. Switching to the current mode re-enters it.
//
// If the Enter hook fails the outgoing mode is re-entered and the error
// is returned.
func (r *Registry) Switch(name string) error {
	next, ok := r.modes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	prev := r.current
	if prev == nil {
		return fmt.Errorf("switch to %s: %w", name, ErrNoMode)
	}

	tr := Transition{From: prev.name, To: name}
	if err := prev.exit(tr); err != nil {
		return fmt.Errorf("exit %s: %w", prev.name, err)
	}

	if err := next.enter(tr); err != nil {
		// Best effort: the caller keeps a usable current mode.
		_ = prev.enter(Transition{From: name, To: prev.name})
		prev.mapper.ResetFull()
		return fmt.Errorf("enter %s: %w", name, err)
	}
	next.mapper.ResetFull()

	r.previous = prev
	r.current = next
	r.notify(tr)
	return nil
}

// OnChange registers a callback for mode changes.
// Returns a function to unregister the callback.
func (r *Registry) OnChange(callback ChangeCallback) func() {
	r.callbacks = append(r.callbacks, callback)
	index := len(r.callbacks) - 1

	return func() {
		// Remove callback by setting to nil (preserves indices)
		if index < len(r.callbacks) {
			r.callbacks[index] = nil
		}
	}
}

func (r *Registry) notify(tr Transition) {
	for _, cb := range r.callbacks {
		if cb != nil {
			cb(tr)
		}
	}
}
