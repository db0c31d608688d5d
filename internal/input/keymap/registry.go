package keymap

import (
	"fmt"
	"slices"
	"sync"
)

// Registry collects keymaps and yields the effective bindings per mode.
//
// Keymaps of the same mode are concatenated in registration order, so
// bindings registered first keep priority on ties.
type Registry struct {
	mu sync.RWMutex

	// keymaps holds all registered keymaps in registration order.
	keymaps []*Keymap
}

// NewRegistry creates a new keymap registry.
func NewRegistry() *Registry {
	return &Registry{
		keymaps: make([]*Keymap, 0),
	}
}

// Register validates and adds a keymap. A keymap with the same name and
// mode replaces the earlier one in place.
func (r *Registry) Register(km *Keymap) error {
	if km == nil {
		return fmt.Errorf("cannot register nil keymap")
	}
	if err := km.Validate(); err != nil {
		return fmt.Errorf("keymap %q: %w", km.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clone := km.Clone()
	for i, existing := range r.keymaps {
		if existing.Name != "" && existing.Name == km.Name && existing.Mode == km.Mode {
			r.keymaps[i] = clone
			return nil
		}
	}
	r.keymaps = append(r.keymaps, clone)
	return nil
}

// Bindings returns the effective bindings of a mode in priority order.
func (r *Registry) Bindings(mode string) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Binding
	for _, km := range r.keymaps {
		if km.Mode == mode {
			out = append(out, km.Bindings...)
		}
	}
	return out
}

// Keymaps returns copies of the registered keymaps in order.
func (r *Registry) Keymaps() []*Keymap {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Keymap, 0, len(r.keymaps))
	for _, km := range r.keymaps {
		out = append(out, km.Clone())
	}
	return out
}

// Modes returns the modes that have at least one keymap, in first-seen order.
func (r *Registry) Modes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var modes []string
	for _, km := range r.keymaps {
		if !slices.Contains(modes, km.Mode) {
			modes = append(modes, km.Mode)
		}
	}
	return modes
}
