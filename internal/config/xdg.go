package config

import (
	"os"
	"path/filepath"
)

const appName = "modalkeys"

// Dirs holds the XDG base directories of modalkeys.
type Dirs struct {
	ConfigHome string
	StateHome  string
}

// GetDirs resolves $XDG_CONFIG_HOME/modalkeys and $XDG_STATE_HOME/modalkeys,
// falling back to ~/.config and ~/.local/state.
func GetDirs() (*Dirs, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(home, ".local", "state")
	}

	return &Dirs{
		ConfigHome: filepath.Join(configHome, appName),
		StateHome:  filepath.Join(stateHome, appName),
	}, nil
}

// GetConfigDir returns the directory searched for config files.
func GetConfigDir() (string, error) {
	dirs, err := GetDirs()
	if err != nil {
		return "", err
	}
	return dirs.ConfigHome, nil
}

// DefaultLogFile is where the terminal host logs when no file is
// configured.
func DefaultLogFile() (string, error) {
	dirs, err := GetDirs()
	if err != nil {
		return "", err
	}
	return filepath.Join(dirs.StateHome, appName+".log"), nil
}
