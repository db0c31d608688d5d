package input

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// Scroll command names. The host registers their actions.
const (
	CommandScrollLeft   = "scroll.left"
	CommandScrollDown   = "scroll.down"
	CommandScrollUp     = "scroll.up"
	CommandScrollRight  = "scroll.right"
	CommandScrollTop    = "scroll.top"
	CommandScrollBottom = "scroll.bottom"
)

// DefaultKeymaps returns the built-in bindings, one keymap per mode.
func DefaultKeymaps() []*keymap.Keymap {
	normal := keymap.NewKeymap("default-normal", mode.Normal).
		AddBinding(keymap.NewBinding("<Esc>", CommandNop).WithRepeat().WithDescription("Clear pending input")).
		AddBinding(keymap.NewBinding("h", CommandScrollLeft).WithRepeat().WithDescription("Scroll left")).
		AddBinding(keymap.NewBinding("j", CommandScrollDown).WithRepeat().WithDescription("Scroll down")).
		AddBinding(keymap.NewBinding("k", CommandScrollUp).WithRepeat().WithDescription("Scroll up")).
		AddBinding(keymap.NewBinding("l", CommandScrollRight).WithRepeat().WithDescription("Scroll right")).
		AddBinding(keymap.NewBinding("gg", CommandScrollTop).WithDescription("Scroll to top")).
		AddBinding(keymap.NewBinding("G", CommandScrollBottom).WithDescription("Scroll to bottom")).
		AddBinding(keymap.NewBinding("i", CommandModeInsert).WithDescription("Enter insert mode")).
		AddBinding(keymap.NewBinding("f", CommandModeHints).WithDescription("Show link hints"))

	insert := keymap.NewKeymap("default-insert", mode.Insert).
		AddBinding(keymap.NewBinding("<Esc>", CommandModeNormal).WithDescription("Leave insert mode"))

	hints := keymap.NewKeymap("default-hints", mode.Hints).
		AddBinding(keymap.NewBinding("<Esc>", CommandModeNormal).WithDescription("Cancel hints"))

	return []*keymap.Keymap{normal, insert, hints}
}

// RegisterDefaults registers the built-in keymaps. Call it before loading
// user keymaps so built-ins win ties.
func RegisterDefaults(registry *keymap.Registry) error {
	for _, km := range DefaultKeymaps() {
		if err := registry.Register(km); err != nil {
			return fmt.Errorf("register %s: %w", km.Name, err)
		}
	}
	return nil
}

// LoadKeymaps returns a registry holding the built-in keymaps, then every
// keymap file in dir sorted by name, then files in order. Broken files in
// dir are logged and skipped; a broken entry of files is an error. An
// empty or missing dir is ignored.
func LoadKeymaps(logger zerolog.Logger, dir string, files ...string) (*keymap.Registry, error) {
	registry := keymap.NewRegistry()
	if err := RegisterDefaults(registry); err != nil {
		return nil, err
	}

	loader := keymap.NewLoader(logger)
	if dir != "" {
		loader.AddSearchPath(dir)
		if err := loader.LoadAndRegister(registry); err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return registry, nil
	}

	keymaps, err := loader.LoadFiles(files...)
	if err != nil {
		return nil, err
	}
	for _, km := range keymaps {
		if err := registry.Register(km); err != nil {
			return nil, fmt.Errorf("register %s: %w", km.Source, err)
		}
	}
	return registry, nil
}
