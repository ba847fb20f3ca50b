// Package config loads the engine configuration from a TOML or YAML
// file, fills in defaults, expands environment variables, and
// validates the result.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the complete engine configuration.
type Config struct {
	// StarRodDir is the Star Rod installation directory; the symbol
	// database lives in its database/ subdirectory.
	StarRodDir string `toml:"star_rod_dir" yaml:"star_rod_dir"`

	// ModDir seeds the workspace search. Empty means "start from the
	// working directory".
	ModDir string `toml:"mod_dir" yaml:"mod_dir"`

	Server ServerConfig `toml:"server" yaml:"server"`
	Index  IndexConfig  `toml:"index" yaml:"index"`
	Log    LogConfig    `toml:"log" yaml:"log"`
	Watch  WatchConfig  `toml:"watch" yaml:"watch"`
}

// ServerConfig holds the websocket service settings.
type ServerConfig struct {
	Host         string   `toml:"host" yaml:"host"`
	Port         int      `toml:"port" yaml:"port"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
}

// IndexConfig holds the persistent symbol index settings.
type IndexConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// WatchConfig holds database watcher settings.
type WatchConfig struct {
	Enabled  bool     `toml:"enabled" yaml:"enabled"`
	Debounce Duration `toml:"debounce" yaml:"debounce"`
}

// Duration wraps time.Duration for TOML and YAML parsing.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file. The format is chosen by extension:
// .yaml/.yml parse as YAML, everything else as TOML.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not readable: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from the STARROD_CONFIG environment
// variable, falling back to the default file locations. A missing file
// is not an error; the defaults apply.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("STARROD_CONFIG")
	if path == "" {
		defaultPaths := []string{
			"./starlang.toml",
			"./starlang.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/starlang/starlang.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9262
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}

	if c.Index.Path == "" {
		c.Index.Path = "./data/symbols.db"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Watch.Debounce.Duration == 0 {
		c.Watch.Debounce.Duration = 500 * time.Millisecond
	}
}

// expandEnvVars expands ${VAR} references in path-valued fields.
func (c *Config) expandEnvVars() {
	c.StarRodDir = os.ExpandEnv(c.StarRodDir)
	c.ModDir = os.ExpandEnv(c.ModDir)
	c.Index.Path = os.ExpandEnv(c.Index.Path)
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q", c.Log.Format)
	}
	if c.Index.Enabled && c.Index.Path == "" {
		return fmt.Errorf("index enabled but no index path set")
	}
	return nil
}

// DatabaseDir returns the database directory inside the Star Rod
// installation, or empty when no installation is configured.
func (c *Config) DatabaseDir() string {
	if c.StarRodDir == "" {
		return ""
	}
	return filepath.Join(c.StarRodDir, "database")
}

// ServerAddress returns the host:port string for the service.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
