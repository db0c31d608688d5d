package input

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/modalkeys/internal/input/keymap"
)

// ErrUnknownCommand is returned when a binding names a command that was
// never registered.
var ErrUnknownCommand = errors.New("unknown command")

// Built-in command names registered by the engine itself.
const (
	CommandNop        = "nop"
	CommandModeNormal = "mode.normal"
	CommandModeInsert = "mode.insert"
	CommandModeHints  = "mode.hints"
)

// Command is a named host action that bindings can refer to.
type Command struct {
	Name        string
	Description string
	Action      keymap.Action
}

// Commands maps command names to actions.
type Commands struct {
	byName map[string]Command
}

// NewCommands creates an empty command table.
func NewCommands() *Commands {
	return &Commands{byName: make(map[string]Command)}
}

// Register adds or replaces a command.
func (c *Commands) Register(name, description string, action keymap.Action) error {
	if name == "" {
		return errors.New("command name is empty")
	}
	if action == nil {
		return fmt.Errorf("command %s: nil action", name)
	}
	c.byName[name] = Command{Name: name, Description: description, Action: action}
	return nil
}

// registerDefault adds a command unless the host already provided one.
func (c *Commands) registerDefault(name, description string, action keymap.Action) {
	if _, ok := c.byName[name]; !ok {
		c.byName[name] = Command{Name: name, Description: description, Action: action}
	}
}

// Lookup returns the action for name.
func (c *Commands) Lookup(name string) (keymap.Action, error) {
	cmd, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.Action, nil
}

// Get returns the command registered under name.
func (c *Commands) Get(name string) (Command, bool) {
	cmd, ok := c.byName[name]
	return cmd, ok
}

// Has reports whether name is registered.
func (c *Commands) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Names returns the registered command names, sorted.
func (c *Commands) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
