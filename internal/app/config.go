package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the editor configuration. Values come from three layers,
// lowest priority first: built-in defaults, the TOML config file, and
// REWIND_* environment variables.
type Config struct {
	Editor  EditorConfig      `toml:"editor"`
	UI      UIConfig          `toml:"ui"`
	Journal JournalConfig     `toml:"journal"`
	Log     LogConfig         `toml:"log"`
	Keys    map[string]string `toml:"keys"`
}

// EditorConfig holds editing behavior settings.
type EditorConfig struct {
	// Limit bounds the total number of entries kept across the whole
	// history tree. When a push grows the tree past the limit, suspended
	// branches are pruned oldest-first until it fits. Zero means
	// unlimited.
	Limit int `toml:"limit"`
}

// UIConfig holds display settings.
type UIConfig struct {
	// Color enables colored accents in the status bar and history pane.
	Color bool `toml:"color"`

	// Times shows entry timestamps in the history pane.
	Times bool `toml:"times"`
}

// JournalConfig holds persistence settings.
type JournalConfig struct {
	// Path is the journal file to load on start and write on save.
	// Empty disables persistence.
	Path string `toml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum level to log ("debug", "info", "warn", "error").
	Level string `toml:"level"`

	// File receives the log output. Empty disables logging; the
	// terminal app cannot log to stderr while the screen is up.
	File string `toml:"file"`
}

// DefaultConfig returns the built-in configuration values.
func DefaultConfig() *Config {
	return &Config{
		Editor:  EditorConfig{Limit: 0},
		UI:      UIConfig{Color: true},
		Journal: JournalConfig{},
		Log:     LogConfig{Level: "info"},
	}
}

// DefaultConfigPath returns the expected location of the user config
// file, honoring XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rewind", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rewind", "config.toml")
}

// LoadConfig loads configuration from the TOML file at path, layered
// over the defaults and under any environment overrides. A missing file
// is not an error; an empty path skips the file layer entirely.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Defaults apply.
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Editor.Limit < 0 {
		return nil, fmt.Errorf("config: editor.limit must not be negative, got %d", cfg.Editor.Limit)
	}
	return cfg, nil
}

// applyEnv overlays REWIND_* environment variables onto cfg.
func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("REWIND_JOURNAL"); ok {
		cfg.Journal.Path = v
	}
	if v, ok := os.LookupEnv("REWIND_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := os.LookupEnv("REWIND_LOG_FILE"); ok {
		cfg.Log.File = v
	}
	if v, ok := os.LookupEnv("REWIND_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: REWIND_LIMIT: %w", err)
		}
		cfg.Editor.Limit = n
	}
	if v, ok := os.LookupEnv("REWIND_COLOR"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: REWIND_COLOR: %w", err)
		}
		cfg.UI.Color = b
	}
	return nil
}

// logger builds the logger the config asks for. The returned close
// function is non-nil only when a log file was opened.
func (c *Config) logger() (*Logger, func() error, error) {
	if c.Log.File == "" {
		return NullLogger, nil, nil
	}
	return NewFileLogger(c.Log.File, ParseLogLevel(c.Log.Level))
}
