package input

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/dshills/modalkeys/internal/input/hint"
	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// ErrNoScripting is returned for a scripted binding when the engine was
// built without a PredicateCompiler.
var ErrNoScripting = errors.New("scripted bindings are not enabled")

// PredicateCompiler turns the source of a scripted binding into a
// Custom mapping predicate.
type PredicateCompiler interface {
	Compile(name, source string) (keymap.Predicate, error)
}

// Options configures New.
type Options struct {
	// Keymaps supplies the bindings of every mode. Nil means the
	// built-in defaults only.
	Keymaps *keymap.Registry

	// Commands resolves binding command names. The engine adds nop and
	// one mode.<name> command per mode unless already present.
	Commands *Commands

	// Hints drives the hints mode. Without it the hints mode has only
	// its key bindings.
	Hints *hint.Session

	// Scripts compiles Lua bindings. Optional.
	Scripts PredicateCompiler

	// MaxCount caps count prefixes (default keymap.DefaultMaxCount).
	MaxCount int

	// InitialMode defaults to normal.
	InitialMode string

	Logger zerolog.Logger
}

// New assembles an engine: one Mapper per mode built from the keymap
// registry, the count prefix first in normal mode and the hint mapping
// last in hints mode.
func New(opts Options) (*Engine, error) {
	if opts.Keymaps == nil {
		opts.Keymaps = keymap.NewRegistry()
		if err := RegisterDefaults(opts.Keymaps); err != nil {
			return nil, err
		}
	}
	if opts.Commands == nil {
		opts.Commands = NewCommands()
	}
	if opts.InitialMode == "" {
		opts.InitialMode = mode.Normal
	}

	e := newEngine(mode.NewRegistry(), opts.Commands, opts.Logger)

	names := []string{mode.Normal, mode.Insert, mode.Hints}
	for _, name := range opts.Keymaps.Modes() {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	e.registerBuiltins(names)

	var errs []error
	for _, name := range names {
		mapper, err := e.buildMapper(name, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		var onEnter, onExit mode.Hook
		if name == mode.Hints && opts.Hints != nil {
			onEnter, onExit = opts.Hints.Enter, opts.Hints.Exit
		}
		if _, err := e.modes.Register(name, mapper, onEnter, onExit); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	e.modes.OnChange(func(tr mode.Transition) {
		e.logger.Info().Str("from", tr.From).Str("to", tr.To).Msg("mode changed")
	})
	if err := e.modes.SetInitial(opts.InitialMode); err != nil {
		return nil, fmt.Errorf("initial mode: %w", err)
	}
	return e, nil
}

func (e *Engine) registerBuiltins(modes []string) {
	e.commands.registerDefault(CommandNop, "Do nothing", func() {})
	for _, name := range modes {
		e.commands.registerDefault("mode."+name, "Switch to "+name+" mode", func() {
			// SwitchMode logs failures.
			_ = e.SwitchMode(name)
		})
	}
}

func (e *Engine) buildMapper(name string, opts Options) (*keymap.Mapper, error) {
	mapper := keymap.NewMapper(mode.DefaultPolicy(name))
	if opts.MaxCount > 0 {
		mapper.Count().SetMax(opts.MaxCount)
	}
	if name == mode.Normal {
		mapper.Add(keymap.NewCount())
	}

	var errs []error
	for _, b := range opts.Keymaps.Bindings(name) {
		m, err := e.bindingMapping(b, mapper, opts.Scripts)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s mode: %w", name, err))
			continue
		}
		mapper.Add(m)
	}

	if name == mode.Hints && opts.Hints != nil {
		mapper.Add(opts.Hints.Mapping(func() {
			_ = e.SwitchMode(mode.Normal)
		}))
	}
	return mapper, errors.Join(errs...)
}

func (e *Engine) bindingMapping(b keymap.Binding, mapper *keymap.Mapper, scripts PredicateCompiler) (keymap.Mapping, error) {
	action, err := e.commands.Lookup(b.Command)
	if err != nil {
		return nil, fmt.Errorf("binding %q: %w", b.Keys, err)
	}
	if !b.IsScripted() {
		m, err := b.Mapping(action)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", b.Keys, err)
		}
		return m, nil
	}

	if scripts == nil {
		return nil, fmt.Errorf("binding %s: %w", b.Command, ErrNoScripting)
	}
	pred, err := scripts.Compile(b.Command, b.Lua)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", b.Command, err)
	}
	repeat := b.Repeat
	return keymap.NewCustom(b.Command, pred, func([]key.Token) {
		n := 1
		if repeat {
			n = mapper.Count().Value()
		}
		for range n {
			action()
		}
	}).WithPattern("{lua}"), nil
}
