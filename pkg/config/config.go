// Package config provides configuration file support for eggtimer.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/eggtimer-project/eggtimer/pkg/errclass"
	"github.com/eggtimer-project/eggtimer/pkg/fsutil"
	"github.com/eggtimer-project/eggtimer/pkg/logging"
	"github.com/eggtimer-project/eggtimer/pkg/nameutil"
)

// FileName is the config file inside the config directory.
const FileName = "config.yaml"

// HomeEnv overrides both the config and data directories.
const HomeEnv = "EGGTIMER_HOME"

// Display modes.
const (
	DisplayAuto  = "auto"
	DisplayBar   = "bar"
	DisplayPlain = "plain"
)

// Volume bounds, as a base-2 exponent.
const (
	MinVolume = -6.0
	MaxVolume = 2.0
)

// Config represents the eggtimer configuration.
type Config struct {
	Sound         bool           `yaml:"sound"`
	Vibration     bool           `yaml:"vibration"`
	Celebration   bool           `yaml:"celebration"`
	Volume        float64        `yaml:"volume"`
	DefaultPreset string         `yaml:"default_preset"`
	Presets       []PresetConfig `yaml:"presets,omitempty"`
	Display       string         `yaml:"display"`
	Journal       bool           `yaml:"journal"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// PresetConfig declares a user preset.
type PresetConfig struct {
	Name    string  `yaml:"name"`
	Minutes float64 `yaml:"minutes"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Sound:         true,
		Vibration:     true,
		Celebration:   true,
		DefaultPreset: "medium",
		Display:       DisplayAuto,
		Journal:       true,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Dir returns the config directory.
func Dir() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "eggtimer"), nil
}

// DataDir returns the directory for the note, the journal and log files.
func DataDir() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "eggtimer"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate data dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "eggtimer"), nil
}

// Load loads configuration from dir/config.yaml.
// Returns default config if the file doesn't exist.
func Load(fs afero.Fs, dir string) (*Config, error) {
	cfg := Default()
	path := filepath.Join(dir, FileName)

	data, err := fsutil.ReadFileIfExists(fs, path)
	if err != nil {
		return nil, errclass.ErrStorage.WithMessagef("read config: %v", err)
	}
	if data == nil {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to dir/config.yaml atomically.
func Save(fs afero.Fs, dir string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := fsutil.AtomicWrite(fs, filepath.Join(dir, FileName), data, 0o644); err != nil {
		return errclass.ErrStorage.WithMessagef("write config: %v", err)
	}
	return nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	switch c.Display {
	case DisplayAuto, DisplayBar, DisplayPlain:
	default:
		return errclass.ErrConfigValue.WithMessagef("display must be auto, bar or plain, got %q", c.Display)
	}
	if math.IsNaN(c.Volume) || c.Volume < MinVolume || c.Volume > MaxVolume {
		return errclass.ErrConfigValue.WithMessagef("volume must be between %g and %g", MinVolume, MaxVolume)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return errclass.ErrConfigValue.WithMessage(err.Error())
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return errclass.ErrConfigValue.WithMessage(err.Error())
	}
	seen := make(map[string]bool, len(c.Presets))
	for _, p := range c.Presets {
		if err := nameutil.ValidateName(p.Name); err != nil {
			return err
		}
		name := nameutil.Normalize(p.Name)
		if seen[name] {
			return errclass.ErrConfigValue.WithMessagef("duplicate preset %q", name)
		}
		seen[name] = true
		if p.Minutes <= 0 || math.IsNaN(p.Minutes) || math.IsInf(p.Minutes, 0) {
			return errclass.ErrConfigValue.WithMessagef("preset %q needs positive minutes", name)
		}
	}
	return nil
}

type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

var fields = map[string]field{
	"sound":          boolField(func(c *Config) *bool { return &c.Sound }),
	"vibration":      boolField(func(c *Config) *bool { return &c.Vibration }),
	"celebration":    boolField(func(c *Config) *bool { return &c.Celebration }),
	"journal":        boolField(func(c *Config) *bool { return &c.Journal }),
	"default_preset": stringField(func(c *Config) *string { return &c.DefaultPreset }),
	"display":        stringField(func(c *Config) *string { return &c.Display }),
	"logging.level":  stringField(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format": stringField(func(c *Config) *string { return &c.Logging.Format }),
	"volume": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Volume, 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return errclass.ErrConfigValue.WithMessagef("volume must be a number, got %q", v)
			}
			c.Volume = f
			return nil
		},
	},
}

func boolField(ptr func(*Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *Config, v string) error {
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "on", "yes", "1":
				*ptr(c) = true
			case "false", "off", "no", "0":
				*ptr(c) = false
			default:
				return errclass.ErrConfigValue.WithMessagef("expected on or off, got %q", v)
			}
			return nil
		},
	}
}

func stringField(ptr func(*Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error {
			*ptr(c) = strings.TrimSpace(v)
			return nil
		},
	}
}

// Keys returns the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string value of key.
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", errclass.ErrConfigKey.WithMessagef("unknown key %q", key)
	}
	return f.get(c), nil
}

// Set parses and assigns value to key, then validates the result.
// The config is unchanged on error.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return errclass.ErrConfigKey.WithMessagef("unknown key %q", key)
	}
	next := *c
	if err := f.set(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
