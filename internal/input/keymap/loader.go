package keymap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Format is a keymap file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for files with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown keymap format")

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Loader loads keymaps from configuration files.
type Loader struct {
	// searchPaths are directories to search for keymap files.
	searchPaths []string

	logger zerolog.Logger
}

// NewLoader creates a new keymap loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		searchPaths: make([]string, 0),
		logger:      logger.With().Str("component", "keymap-loader").Logger(),
	}
}

// AddSearchPath adds a directory to search for keymap files.
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// LoadFile loads a keymap, choosing the decoder from the extension.
func (l *Loader) LoadFile(path string) (*Keymap, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening keymap file: %w", err)
	}
	defer f.Close()

	km, err := l.LoadReader(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if km.Source == "" {
		km.Source = path
	}
	if km.Name == "" {
		km.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return km, nil
}

// LoadReader decodes and validates a keymap.
func (l *Loader) LoadReader(r io.Reader, format Format) (*Keymap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading keymap: %w", err)
	}

	var km Keymap
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &km)
	case FormatTOML:
		err = toml.Unmarshal(data, &km)
	case FormatYAML:
		err = yaml.Unmarshal(data, &km)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s keymap: %w", format, err)
	}

	if err := km.Validate(); err != nil {
		return nil, fmt.Errorf("invalid keymap: %w", err)
	}
	return &km, nil
}

// LoadFiles loads the given files in order. It stops at the first error.
func (l *Loader) LoadFiles(paths ...string) ([]*Keymap, error) {
	keymaps := make([]*Keymap, 0, len(paths))
	for _, path := range paths {
		km, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		keymaps = append(keymaps, km)
	}
	return keymaps, nil
}

// LoadAll loads every keymap file found in the search paths, sorted by
// file name within each directory. Broken files are logged and skipped.
func (l *Loader) LoadAll() ([]*Keymap, error) {
	keymaps := make([]*Keymap, 0)

	for _, dir := range l.searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading keymap dir: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if _, err := FormatFromPath(path); err != nil {
				continue
			}

			km, err := l.LoadFile(path)
			if err != nil {
				l.logger.Warn().Err(err).Str("path", path).Msg("skipping keymap file")
				continue
			}
			keymaps = append(keymaps, km)
		}
	}

	return keymaps, nil
}

// LoadAndRegister loads all keymaps and registers them.
func (l *Loader) LoadAndRegister(registry *Registry) error {
	keymaps, err := l.LoadAll()
	if err != nil {
		return err
	}

	for _, km := range keymaps {
		if err := registry.Register(km); err != nil {
			return fmt.Errorf("registering keymap %q: %w", km.Name, err)
		}
	}

	return nil
}
