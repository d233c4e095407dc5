// Package config handles the daisho home directory and its config.yml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/arvimal/daisho/internal/storage"
	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in <home>/config.yml.
// Relative file names resolve inside Home.
type Config struct {
	Backend     string `yaml:"backend"`
	Database    string `yaml:"database"`
	Records     string `yaml:"records"`
	Bolt        string `yaml:"bolt"`
	History     string `yaml:"history"`
	LogFile     string `yaml:"log_file"`
	LogLevel    string `yaml:"log_level"`
	LogEncoding string `yaml:"log_encoding"`
	Prompt      string `yaml:"prompt"`

	// Home is the directory config.yml was loaded from.
	Home string `yaml:"-"`
}

const (
	ConfigFile  = "config.yml"
	DBFile      = "daisho.db"
	RecordsFile = "records.jsonl"
	BoltFile    = "daisho.bolt"
	HistoryFile = "history.txt"
	LogFile     = "daisho.log"

	DefaultPrompt   = "daisho ->> "
	DefaultLogLevel = "info"
)

// ValidLogLevels lists the accepted log_level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogEncodings lists the accepted log_encoding values.
var ValidLogEncodings = []string{"json", "console"}

// ErrNotInitialized is returned when the home has no config.yml.
var ErrNotInitialized = errors.New("daisho is not initialized")

// ErrUnknownKey is returned by Get and Set for keys config.yml does not have.
var ErrUnknownKey = errors.New("unknown configuration key")

// Default returns the configuration written on first run.
func Default(home string) *Config {
	return &Config{
		Backend:     storage.BackendSQLite,
		Database:    DBFile,
		Records:     RecordsFile,
		Bolt:        BoltFile,
		History:     HistoryFile,
		LogFile:     LogFile,
		LogLevel:    DefaultLogLevel,
		LogEncoding: "json",
		Prompt:      DefaultPrompt,
		Home:        home,
	}
}

// ConfigPath returns the path to config.yml inside home.
func ConfigPath(home string) string {
	return filepath.Join(home, ConfigFile)
}

// IsInitialized checks whether home contains a config.yml.
func IsInitialized(home string) bool {
	info, err := os.Stat(ConfigPath(home))
	return err == nil && !info.IsDir()
}

// Load reads config.yml from home. Missing fields take their defaults and
// DAISHO_LOG_LEVEL overrides log_level.
func Load(home string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(home))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no %s in %s", ErrNotInitialized, ConfigFile, home)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default(home)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Home = home
	cfg.fillDefaults()

	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults restores defaults for keys present but empty in config.yml.
func (c *Config) fillDefaults() {
	def := Default(c.Home)
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&c.Backend, def.Backend},
		{&c.Database, def.Database},
		{&c.Records, def.Records},
		{&c.Bolt, def.Bolt},
		{&c.History, def.History},
		{&c.LogFile, def.LogFile},
		{&c.LogLevel, def.LogLevel},
		{&c.LogEncoding, def.LogEncoding},
		{&c.Prompt, def.Prompt},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	if !slices.Contains(storage.ValidBackends, c.Backend) {
		return fmt.Errorf("invalid backend: %s (valid: %v)", c.Backend, storage.ValidBackends)
	}
	if !slices.Contains(ValidLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level: %s (valid: %v)", c.LogLevel, ValidLogLevels)
	}
	if !slices.Contains(ValidLogEncodings, c.LogEncoding) {
		return fmt.Errorf("invalid log_encoding: %s (valid: %v)", c.LogEncoding, ValidLogEncodings)
	}
	return nil
}

// Save writes configuration to config.yml in Home.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(c.Home), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Path resolves a configured file name against Home.
func (c *Config) Path(name string) string {
	name = ExpandTilde(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Home, name)
}

// StorePath returns the data file of the configured backend.
func (c *Config) StorePath() string {
	switch c.Backend {
	case storage.BackendJSONL:
		return c.Path(c.Records)
	case storage.BackendBolt:
		return c.Path(c.Bolt)
	default:
		return c.Path(c.Database)
	}
}

// HistoryPath returns the REPL history file.
func (c *Config) HistoryPath() string {
	return c.Path(c.History)
}

// LogPath returns the log file.
func (c *Config) LogPath() string {
	return c.Path(c.LogFile)
}

// Keys lists the config.yml keys Get and Set accept, in file order.
var Keys = []string{"backend", "database", "records", "bolt", "history", "log_file", "log_level", "log_encoding", "prompt"}

func (c *Config) field(key string) (*string, error) {
	switch normalizeKey(key) {
	case "backend":
		return &c.Backend, nil
	case "database":
		return &c.Database, nil
	case "records":
		return &c.Records, nil
	case "bolt":
		return &c.Bolt, nil
	case "history":
		return &c.History, nil
	case "log_file":
		return &c.LogFile, nil
	case "log_level":
		return &c.LogLevel, nil
	case "log_encoding":
		return &c.LogEncoding, nil
	case "prompt":
		return &c.Prompt, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Get returns a single value by key. Keys may use dashes or underscores.
func (c *Config) Get(key string) (string, error) {
	f, err := c.field(key)
	if err != nil {
		return "", err
	}
	return *f, nil
}

// Set changes a single value and validates the result. The config is
// unchanged when validation fails.
func (c *Config) Set(key, value string) error {
	f, err := c.field(key)
	if err != nil {
		return err
	}
	old := *f
	*f = value
	if err := c.Validate(); err != nil {
		*f = old
		return err
	}
	return nil
}

// AsMap returns every key and value, for display.
func (c *Config) AsMap() map[string]string {
	m := make(map[string]string, len(Keys))
	for _, k := range Keys {
		m[k], _ = c.Get(k)
	}
	return m
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}
