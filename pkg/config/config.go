// Package config loads callviz settings from a TOML file.
//
// Settings are optional; a missing file yields [Default]. Command-line flags
// override whatever the file sets.
//
//	[render]
//	covered_color = "green"
//	constructor_label = ""
//	formats = ["dot"]
//	output_dir = ""        # empty writes next to the input file
//
//	[cache]
//	dir = ""
//	redis_url = ""
//	ttl = "24h"
//	memory_entries = 256    # in-process LRU in front of the cache (serve only)
//
//	[server]
//	addr = ":8080"
//	metrics = true          # expose Prometheus metrics on /metrics
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/callviz/pkg/errors"
)

const appName = "callviz"

// Config is the top-level configuration.
type Config struct {
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// RenderConfig controls DOT export and rendering.
type RenderConfig struct {
	CoveredColor     string   `toml:"covered_color"`
	ConstructorLabel string   `toml:"constructor_label"`
	Formats          []string `toml:"formats"`
	OutputDir        string   `toml:"output_dir"`
}

// CacheConfig controls the rendered-artifact cache.
type CacheConfig struct {
	Dir           string   `toml:"dir"`
	RedisURL      string   `toml:"redis_url"`
	TTL           Duration `toml:"ttl"`
	MemoryEntries int      `toml:"memory_entries"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

// Duration is a time.Duration that decodes from strings like "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Render: RenderConfig{
			CoveredColor: "green",
			Formats:      []string{"dot"},
		},
		Cache: CacheConfig{
			TTL:           Duration{24 * time.Hour},
			MemoryEntries: 256,
		},
		Server: ServerConfig{
			Addr:    ":8080",
			Metrics: true,
		},
	}
}

// Load reads the TOML file at path on top of [Default]. An empty path uses
// [DefaultPath]. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %s", path, undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks values that would otherwise produce a broken document.
func (c Config) Validate() error {
	if err := errors.ValidateColor(c.Render.CoveredColor); err != nil {
		return err
	}
	if err := errors.ValidateLabel(c.Render.ConstructorLabel); err != nil {
		return err
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl cannot be negative")
	}
	if c.Cache.MemoryEntries < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache memory_entries cannot be negative")
	}
	return nil
}

// DefaultPath returns the config file location using the XDG standard
// (~/.config/callviz/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the configured cache directory, falling back to
// $XDG_CACHE_HOME/callviz or ~/.cache/callviz.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
