package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 9262 {
		t.Errorf("Server.Port = %d, want 9262", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Watch.Debounce.Duration != 500*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 500ms", cfg.Watch.Debounce.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "starlang.toml", `
star_rod_dir = "/opt/starrod"
mod_dir = "/mods/mymod"

[server]
host = "0.0.0.0"
port = 9300

[index]
enabled = true
path = "/tmp/symbols.db"

[log]
level = "debug"
format = "json"

[watch]
enabled = true
debounce = "250ms"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.StarRodDir != "/opt/starrod" {
		t.Errorf("StarRodDir = %q", cfg.StarRodDir)
	}
	if got := cfg.DatabaseDir(); got != filepath.Join("/opt/starrod", "database") {
		t.Errorf("DatabaseDir() = %q", got)
	}
	if cfg.Server.Port != 9300 {
		t.Errorf("Server.Port = %d, want 9300", cfg.Server.Port)
	}
	if got := cfg.ServerAddress(); got != "0.0.0.0:9300" {
		t.Errorf("ServerAddress() = %q", got)
	}
	if !cfg.Index.Enabled || cfg.Index.Path != "/tmp/symbols.db" {
		t.Errorf("Index = %+v", cfg.Index)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Watch.Debounce.Duration != 250*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 250ms", cfg.Watch.Debounce.Duration)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "starlang.yaml", `
star_rod_dir: /opt/starrod
server:
  port: 9400
log:
  level: warn
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9400 {
		t.Errorf("Server.Port = %d, want 9400", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	// Unset sections still get defaults.
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want default", cfg.Server.Host)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("STARLANG_TEST_DIR", "/expanded/starrod")

	path := writeConfig(t, "starlang.toml", `
star_rod_dir = "${STARLANG_TEST_DIR}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.StarRodDir != "/expanded/starrod" {
		t.Errorf("StarRodDir = %q, want expansion", cfg.StarRodDir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() on a missing file should fail")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative port", func(c *Config) { c.Server.Port = -1 }},
		{"huge port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"index without path", func(c *Config) { c.Index.Enabled = true; c.Index.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestLoadFromEnvWithoutFile(t *testing.T) {
	t.Setenv("STARROD_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error: %v", err)
	}
	if cfg.Server.Port != 9262 {
		t.Errorf("expected defaults, got port %d", cfg.Server.Port)
	}
}
