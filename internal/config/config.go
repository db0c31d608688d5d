// Package config loads modalkeys settings from a config file and the
// environment with viper, and reloads them when the file changes.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/dshills/modalkeys/internal/input/hint"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/logging"
	"github.com/dshills/modalkeys/internal/plugin/lua"
)

// EnvPrefix prefixes every environment override, e.g.
// MODALKEYS_NORMAL_MAX_COUNT.
const EnvPrefix = "MODALKEYS"

// keymapDirName is the drop-in keymap directory next to the config file.
const keymapDirName = "keymaps"

// DefaultScrollStep is how many lines h/j/k/l move per repetition.
const DefaultScrollStep = 1

// Config is the complete modalkeys configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
	Keymap  KeymapConfig  `mapstructure:"keymap" yaml:"keymap" json:"keymap"`
	Normal  NormalConfig  `mapstructure:"normal" yaml:"normal" json:"normal"`
	Hints   HintsConfig   `mapstructure:"hints" yaml:"hints" json:"hints"`
	Lua     LuaConfig     `mapstructure:"lua" yaml:"lua" json:"lua"`
}

// LoggingConfig selects the log level, encoding and destination.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	// File is empty for stderr.
	File string `mapstructure:"file" yaml:"file" json:"file"`
}

// KeymapConfig locates user keymaps. They load after the built-in
// defaults: first every file in Dir by name, then Files in order.
type KeymapConfig struct {
	// Dir holds drop-in keymap files. Empty disables it.
	Dir   string   `mapstructure:"dir" yaml:"dir" json:"dir"`
	Files []string `mapstructure:"files" yaml:"files" json:"files"`
}

// NormalConfig tunes normal mode.
type NormalConfig struct {
	MaxCount   int `mapstructure:"max_count" yaml:"max_count" json:"max_count"`
	ScrollStep int `mapstructure:"scroll_step" yaml:"scroll_step" json:"scroll_step"`
}

// HintsConfig tunes hints mode.
type HintsConfig struct {
	Symbols string `mapstructure:"symbols" yaml:"symbols" json:"symbols"`
}

// LuaConfig tunes scripted bindings.
type LuaConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Keymap: KeymapConfig{Files: []string{}},
		Normal: NormalConfig{
			MaxCount:   keymap.DefaultMaxCount,
			ScrollStep: DefaultScrollStep,
		},
		Hints: HintsConfig{Symbols: hint.DefaultSymbols},
		Lua:   LuaConfig{Timeout: lua.DefaultTimeout},
	}
}

// LoggerConfig converts the logging section for the logging package.
func (c LoggingConfig) LoggerConfig() (logging.Config, error) {
	cfg := logging.DefaultConfig()
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return cfg, err
	}
	cfg.Level = level
	if c.Format != "" {
		cfg.Format = c.Format
	}
	cfg.File = c.File
	return cfg, nil
}

// Manager owns the viper instance and the current Config.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	logger    zerolog.Logger
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	file   string
	dirs   []string
	logger zerolog.Logger
}

// WithFile reads exactly this file instead of searching for config.*.
func WithFile(path string) Option {
	return func(o *managerOptions) {
		o.file = path
	}
}

// WithSearchDir adds a directory searched for config.{yaml,toml,json}.
func WithSearchDir(dir string) Option {
	return func(o *managerOptions) {
		o.dirs = append(o.dirs, dir)
	}
}

// WithLogger sets the logger used for reload warnings.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// NewManager creates a manager. Without WithFile or WithSearchDir it
// searches the XDG config directory.
func NewManager(opts ...Option) (*Manager, error) {
	o := managerOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	var keymapDir string
	if o.file != "" {
		v.SetConfigFile(o.file)
		keymapDir = filepath.Join(filepath.Dir(o.file), keymapDirName)
	} else {
		if len(o.dirs) == 0 {
			dir, err := GetConfigDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get config directory: %w", err)
			}
			o.dirs = append(o.dirs, dir)
		}
		v.SetConfigName("config")
		for _, dir := range o.dirs {
			v.AddConfigPath(dir)
		}
		keymapDir = filepath.Join(o.dirs[0], keymapDirName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	m := &Manager{
		viper:     v,
		logger:    o.logger.With().Str("component", "config").Logger(),
		callbacks: make([]func(*Config), 0),
	}
	m.setDefaults()
	v.SetDefault("keymap.dir", keymapDir)
	return m, nil
}

// Load reads the config file, if any, and the environment. A missing
// file in the search directories is not an error; a missing WithFile
// path is.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := m.decode()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Get returns a copy of the current configuration, or the defaults
// before Load.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	cfg := *m.config
	cfg.Keymap.Files = slices.Clone(m.config.Keymap.Files)
	return &cfg
}

// Set overrides a key above the file and environment, e.g. for a
// command-line flag. Call Load afterwards.
func (m *Manager) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viper.Set(key, value)
}

// ConfigFile returns the file Load read, or "".
func (m *Manager) ConfigFile() string {
	return m.viper.ConfigFileUsed()
}

// Watch reloads the configuration whenever the file changes and runs
// the OnConfigChange callbacks on viper's watcher goroutine. A reload
// that fails validation keeps the previous configuration.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil
	}
	if m.viper.ConfigFileUsed() == "" {
		return ErrNoConfigFile
	}

	m.viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := m.reload()
		if err != nil {
			m.logger.Warn().Err(err).Str("file", e.Name).Msg("failed to reload config")
			return
		}
		m.logger.Info().Str("file", e.Name).Str("op", e.Op.String()).Msg("config reloaded")

		m.mu.RLock()
		callbacks := slices.Clone(m.callbacks)
		m.mu.RUnlock()

		for _, callback := range callbacks {
			callback(cfg)
		}
	})
	m.viper.WatchConfig()

	m.watching = true
	return nil
}

// OnConfigChange registers a callback run after each successful reload.
func (m *Manager) OnConfigChange(callback func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
}

func (m *Manager) reload() (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.viper.ReadInConfig(); err != nil {
		return nil, err
	}
	cfg, err := m.decode()
	if err != nil {
		return nil, err
	}
	m.config = cfg
	return cfg, nil
}

// decode must be called with the lock held.
func (m *Manager) decode() (*Config, error) {
	cfg := &Config{}
	if err := m.viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.file", defaults.Logging.File)

	m.viper.SetDefault("keymap.dir", defaults.Keymap.Dir)
	m.viper.SetDefault("keymap.files", defaults.Keymap.Files)

	m.viper.SetDefault("normal.max_count", defaults.Normal.MaxCount)
	m.viper.SetDefault("normal.scroll_step", defaults.Normal.ScrollStep)

	m.viper.SetDefault("hints.symbols", defaults.Hints.Symbols)

	m.viper.SetDefault("lua.timeout", defaults.Lua.Timeout)
}
