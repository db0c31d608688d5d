package config

import (
	"errors"
	"fmt"

	"github.com/dshills/modalkeys/internal/input/hint"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/logging"
)

// Validate reports every problem in cfg at once.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch cfg.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json (got: %s)", cfg.Logging.Format))
	}

	for _, path := range cfg.Keymap.Files {
		if _, err := keymap.FormatFromPath(path); err != nil {
			errs = append(errs, fmt.Errorf("keymap.files: %w", err))
		}
	}

	if cfg.Normal.MaxCount < 0 {
		errs = append(errs, errors.New("normal.max_count must be non-negative"))
	}
	if cfg.Normal.ScrollStep < 1 {
		errs = append(errs, errors.New("normal.scroll_step must be at least 1"))
	}

	if _, err := hint.ParseSymbols(cfg.Hints.Symbols); err != nil {
		errs = append(errs, fmt.Errorf("hints.symbols: %w", err))
	}

	if cfg.Lua.Timeout <= 0 {
		errs = append(errs, errors.New("lua.timeout must be positive"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
