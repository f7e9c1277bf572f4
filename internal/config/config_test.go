package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig points XDG_CONFIG_HOME at a temp dir and writes content as the
// default config file. It returns the file path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	dir := filepath.Join(tempDir, "pomodoro")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("Storage.Backend = %q, want file", cfg.Storage.Backend)
	}
	if !cfg.Notifications.Desktop || !cfg.Notifications.Sound {
		t.Error("notifications should be on by default")
	}
	if cfg.Theme.Work == "" || cfg.Theme.Break == "" {
		t.Error("phase colors should have defaults")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Theme.Primary != Default().Theme.Primary {
		t.Errorf("Theme.Primary = %q, want default", cfg.Theme.Primary)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	writeConfig(t, `
data_dir: /custom/data
storage:
  backend: SQLite
theme:
  primary: "#FF0000"
keys:
  skip: "n"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DataDir != "/custom/data" {
		t.Errorf("DataDir = %q, want /custom/data", cfg.DataDir)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("Storage.Backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Theme.Primary != "#FF0000" {
		t.Errorf("Theme.Primary = %q, want #FF0000", cfg.Theme.Primary)
	}
	if cfg.Keys.Skip != "n" {
		t.Errorf("Keys.Skip = %q, want n", cfg.Keys.Skip)
	}

	// Muted should still be default
	if cfg.Theme.Muted != "#6B7280" {
		t.Errorf("Theme.Muted = %q, want #6B7280", cfg.Theme.Muted)
	}
}

func TestLoad_MissingBoolKeysDoesNotClobberDefaults(t *testing.T) {
	writeConfig(t, `
theme:
  primary: "#FF0000"
log:
  debug: true
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Log.Debug {
		t.Errorf("Log.Debug = %v, want true", cfg.Log.Debug)
	}
	if !cfg.UX.ConfirmDeletions {
		t.Errorf("UX.ConfirmDeletions = %v, want true", cfg.UX.ConfirmDeletions)
	}
	if !cfg.UX.Mouse {
		t.Errorf("UX.Mouse = %v, want true", cfg.UX.Mouse)
	}
	if !cfg.Notifications.Sound {
		t.Errorf("Notifications.Sound = %v, want true", cfg.Notifications.Sound)
	}
	if cfg.Log.MaxFiles != 20 {
		t.Errorf("Log.MaxFiles = %d, want 20", cfg.Log.MaxFiles)
	}
}

func TestLoad_ExplicitFalseOverridesDefault(t *testing.T) {
	writeConfig(t, `
ux:
  confirm_deletions: false
  mouse: false
notifications:
  desktop: false
log:
  max_files: 0
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.UX.ConfirmDeletions {
		t.Error("UX.ConfirmDeletions = true, want false")
	}
	if cfg.UX.Mouse {
		t.Error("UX.Mouse = true, want false")
	}
	if cfg.Notifications.Desktop {
		t.Error("Notifications.Desktop = true, want false")
	}
	if !cfg.Notifications.Sound {
		t.Error("Notifications.Sound = false, want true")
	}
	if cfg.Log.MaxFiles != 0 {
		t.Errorf("Log.MaxFiles = %d, want 0", cfg.Log.MaxFiles)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "theme: [", "parse config"},
		{"unknown backend", "storage:\n  backend: redis\n", "storage.backend"},
		{"negative max files", "log:\n  max_files: -1\n", "max_files"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.content)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFrom_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("data_dir: /elsewhere\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.DataDir != "/elsewhere" {
		t.Errorf("DataDir = %q, want /elsewhere", cfg.DataDir)
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.mergeNonEmpty(&Config{
		DataDir: "/override/path",
		Theme:   ThemeConfig{Primary: "#CUSTOM"},
	})

	if base.DataDir != "/override/path" {
		t.Errorf("DataDir = %q, want /override/path", base.DataDir)
	}
	if base.Theme.Primary != "#CUSTOM" {
		t.Errorf("Theme.Primary = %q, want #CUSTOM", base.Theme.Primary)
	}
	if base.Theme.Accent != Default().Theme.Accent {
		t.Errorf("Theme.Accent = %q, want default", base.Theme.Accent)
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetDataDir(); filepath.Base(got) != ".pomodoro" {
		t.Errorf("GetDataDir() = %q, want to end with .pomodoro", got)
	}

	cfg.DataDir = "/custom/path"
	if got := cfg.GetDataDir(); got != "/custom/path" {
		t.Errorf("GetDataDir() = %q, want /custom/path", got)
	}
	if got := cfg.DatabasePath(); got != filepath.Join("/custom/path", "pomodoro.db") {
		t.Errorf("DatabasePath() = %q", got)
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		cfg.DataDir = "~/mydata"
		if got := cfg.GetDataDir(); got != filepath.Join(home, "mydata") {
			t.Errorf("GetDataDir() = %q, want %q", got, filepath.Join(home, "mydata"))
		}
		cfg.DataDir = "~"
		if got := cfg.GetDataDir(); got != home {
			t.Errorf("GetDataDir() = %q, want %q", got, home)
		}
	}
}

func TestSave(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	cfg := Default()
	cfg.DataDir = "/saved/path"
	cfg.UX.Mouse = false
	cfg.Storage.Backend = BackendSQLite

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "pomodoro", "config.yaml")); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DataDir != "/saved/path" {
		t.Errorf("loaded DataDir = %q, want /saved/path", loaded.DataDir)
	}
	if loaded.UX.Mouse {
		t.Error("loaded UX.Mouse = true, want false")
	}
	if loaded.Storage.Backend != BackendSQLite {
		t.Errorf("loaded Storage.Backend = %q, want sqlite", loaded.Storage.Backend)
	}
}
