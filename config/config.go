// Package config loads the tela configuration file and watches it for
// changes.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Defaults applied when the file is missing or a field is zero.
const (
	DefaultSnapThreshold      = 12.0
	DefaultElementDebounceMS  = 500
	DefaultViewportDebounceMS = 1000
	DefaultBackground         = "dots"
	DefaultLogLevel           = "info"
)

// Config is the on-disk configuration.
type Config struct {
	DataDir string `toml:"data_dir"`

	Canvas  CanvasConfig  `toml:"canvas"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

// CanvasConfig holds interaction tunables.
type CanvasConfig struct {
	SnapThreshold float64 `toml:"snap_threshold"`
	Background    string  `toml:"background"`
}

// StorageConfig holds persistence tunables.
type StorageConfig struct {
	ElementDebounceMS  int `toml:"element_debounce_ms"`
	ViewportDebounceMS int `toml:"viewport_debounce_ms"`
}

// LoggingConfig holds the log level.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.Canvas.SnapThreshold <= 0 {
		c.Canvas.SnapThreshold = DefaultSnapThreshold
	}
	if c.Canvas.Background == "" {
		c.Canvas.Background = DefaultBackground
	}
	if c.Storage.ElementDebounceMS <= 0 {
		c.Storage.ElementDebounceMS = DefaultElementDebounceMS
	}
	if c.Storage.ViewportDebounceMS <= 0 {
		c.Storage.ViewportDebounceMS = DefaultViewportDebounceMS
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

// DefaultPath returns the configuration file location, honoring the
// TELA_CONFIG environment variable.
func DefaultPath() string {
	if p := os.Getenv("TELA_CONFIG"); p != "" {
		return p
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "tela.toml")
	}
	return filepath.Join(base, "tela", "config.toml")
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "tela-data")
	}
	return filepath.Join(base, "tela")
}

// Load reads the configuration at path. A missing file yields the defaults;
// a present but malformed file is an error.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// DBPath returns the workspace database location under the data dir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "workspaces.db")
}

// LogPath returns the log file location under the data dir.
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, "tela.log")
}

// ElementDebounce returns the element save delay as a duration.
func (c Config) ElementDebounce() time.Duration {
	return time.Duration(c.Storage.ElementDebounceMS) * time.Millisecond
}

// ViewportDebounce returns the viewport save delay as a duration.
func (c Config) ViewportDebounce() time.Duration {
	return time.Duration(c.Storage.ViewportDebounceMS) * time.Millisecond
}
