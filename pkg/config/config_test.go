package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/callviz/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Render.CoveredColor != "green" {
		t.Errorf("CoveredColor = %q, want green", cfg.Render.CoveredColor)
	}
	if !slices.Equal(cfg.Render.Formats, []string{"dot"}) {
		t.Errorf("Formats = %v, want [dot]", cfg.Render.Formats)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("TTL = %v, want 24h", cfg.Cache.TTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[render]
covered_color = "#2E8B57"
constructor_label = "constructor"
formats = ["dot", "svg"]

[cache]
redis_url = "redis://localhost:6379/0"
ttl = "90m"
memory_entries = 0

[server]
addr = "127.0.0.1:9000"
metrics = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Render.CoveredColor != "#2E8B57" {
		t.Errorf("CoveredColor = %q", cfg.Render.CoveredColor)
	}
	if cfg.Render.ConstructorLabel != "constructor" {
		t.Errorf("ConstructorLabel = %q", cfg.Render.ConstructorLabel)
	}
	if !slices.Equal(cfg.Render.Formats, []string{"dot", "svg"}) {
		t.Errorf("Formats = %v", cfg.Render.Formats)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("TTL = %v, want 90m", cfg.Cache.TTL)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.Cache.RedisURL)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.MemoryEntries != 0 || cfg.Server.Metrics {
		t.Errorf("MemoryEntries = %d, Metrics = %v; want 0, false", cfg.Cache.MemoryEntries, cfg.Server.Metrics)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[server]\naddr = \":9999\"\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Render.CoveredColor != "green" {
		t.Errorf("CoveredColor = %q, want default green", cfg.Render.CoveredColor)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("TTL = %v, want default 24h", cfg.Cache.TTL)
	}
	if cfg.Cache.MemoryEntries != 256 || !cfg.Server.Metrics {
		t.Errorf("MemoryEntries = %d, Metrics = %v; want defaults", cfg.Cache.MemoryEntries, cfg.Server.Metrics)
	}
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load(missing) error: %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("Load(missing) did not return defaults: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[render\n", errors.ErrCodeInvalidConfig},
		{"unknown key", "[render]\ncolour = \"red\"\n", errors.ErrCodeInvalidConfig},
		{"bad duration", "[cache]\nttl = \"soon\"\n", errors.ErrCodeInvalidConfig},
		{"bad color", "[render]\ncovered_color = \"#12\"\n", errors.ErrCodeInvalidColor},
		{"bad label", "[render]\nconstructor_label = \"a\\\"b\"\n", errors.ErrCodeInvalidInput},
		{"negative ttl", "[cache]\nttl = \"-1h\"\n", errors.ErrCodeInvalidConfig},
		{"negative memory", "[cache]\nmemory_entries = -1\n", errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	if path != filepath.Join("/tmp/xdg", "callviz", "config.toml") {
		t.Errorf("DefaultPath() = %q", path)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cachehome")

	dir, err := Default().CacheDir()
	if err != nil {
		t.Fatalf("CacheDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/cachehome", "callviz") {
		t.Errorf("CacheDir() = %q", dir)
	}

	cfg := Default()
	cfg.Cache.Dir = "/var/cache/cv"
	if dir, _ := cfg.CacheDir(); dir != "/var/cache/cv" {
		t.Errorf("CacheDir() with override = %q", dir)
	}
}
