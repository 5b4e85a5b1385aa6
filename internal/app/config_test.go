package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearRewindEnv shields a test from REWIND_* variables in the host
// environment. t.Setenv registers the restore; Unsetenv then removes
// the variable for the test's duration.
func clearRewindEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"REWIND_JOURNAL", "REWIND_LOG_LEVEL", "REWIND_LOG_FILE", "REWIND_LIMIT", "REWIND_COLOR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Editor.Limit != 0 {
		t.Errorf("Limit = %d, want 0", cfg.Editor.Limit)
	}
	if !cfg.UI.Color {
		t.Error("Color = false, want true")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Journal.Path != "" {
		t.Errorf("Journal.Path = %q, want empty", cfg.Journal.Path)
	}
}

func TestLoadConfig_File(t *testing.T) {
	clearRewindEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[editor]
limit = 5

[ui]
color = false
times = true

[journal]
path = "notes.journal"

[log]
level = "debug"
file = "rewind.log"

[keys]
undo = "f5"
redo = "f6"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Editor.Limit != 5 {
		t.Errorf("Limit = %d, want 5", cfg.Editor.Limit)
	}
	if cfg.UI.Color {
		t.Error("Color = true, want false")
	}
	if !cfg.UI.Times {
		t.Error("Times = false, want true")
	}
	if cfg.Journal.Path != "notes.journal" {
		t.Errorf("Journal.Path = %q, want %q", cfg.Journal.Path, "notes.journal")
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "rewind.log" {
		t.Errorf("Log = %+v, want debug/rewind.log", cfg.Log)
	}
	if cfg.Keys["undo"] != "f5" || cfg.Keys["redo"] != "f6" {
		t.Errorf("Keys = %v, want undo=f5 redo=f6", cfg.Keys)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearRewindEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Editor.Limit != 0 || !cfg.UI.Color {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_BadTOML(t *testing.T) {
	clearRewindEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[editor\nlimit = 5"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() expected error for malformed TOML")
	}
	if !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("error = %v, want parse context", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearRewindEnv(t)
	t.Setenv("REWIND_JOURNAL", "/tmp/env.journal")
	t.Setenv("REWIND_LIMIT", "9")
	t.Setenv("REWIND_COLOR", "false")
	t.Setenv("REWIND_LOG_LEVEL", "error")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Journal.Path != "/tmp/env.journal" {
		t.Errorf("Journal.Path = %q, want env value", cfg.Journal.Path)
	}
	if cfg.Editor.Limit != 9 {
		t.Errorf("Limit = %d, want 9", cfg.Editor.Limit)
	}
	if cfg.UI.Color {
		t.Error("Color = true, want false from env")
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "error")
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearRewindEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[journal]\npath = \"file.journal\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REWIND_JOURNAL", "env.journal")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Journal.Path != "env.journal" {
		t.Errorf("Journal.Path = %q, environment should win", cfg.Journal.Path)
	}
}

func TestLoadConfig_BadEnvValue(t *testing.T) {
	clearRewindEnv(t)
	t.Setenv("REWIND_LIMIT", "many")

	if _, err := LoadConfig(""); err == nil {
		t.Fatal("LoadConfig() expected error for non-numeric REWIND_LIMIT")
	}
}

func TestLoadConfig_NegativeLimit(t *testing.T) {
	clearRewindEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[editor]\nlimit = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() expected error for negative limit")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	got := DefaultConfigPath()
	want := filepath.Join("/custom/config", "rewind", "config.toml")
	if got != want {
		t.Errorf("DefaultConfigPath() = %q, want %q", got, want)
	}
}
