// Package config handles configuration loading and defaults for pomodoro.
// Configuration is loaded from XDG-compliant paths (typically ~/.config/pomodoro/config.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pomodoro/internal/fsutil"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.pomodoro)
	DataDir string `yaml:"data_dir,omitempty"`

	Storage StorageConfig `yaml:"storage,omitempty"`

	// Theme customizes the visual appearance
	Theme ThemeConfig `yaml:"theme,omitempty"`

	// Keys customizes keyboard shortcuts
	Keys KeysConfig `yaml:"keys,omitempty"`

	UX UXConfig `yaml:"ux,omitempty"`

	// Notifications configures what happens when a phase completes
	Notifications NotificationConfig `yaml:"notifications,omitempty"`

	Log LogConfig `yaml:"log,omitempty"`
}

// StorageConfig selects where the widget state is persisted.
type StorageConfig struct {
	// Backend is "file" (one JSON file per blob) or "sqlite" (pomodoro.db)
	Backend string `yaml:"backend,omitempty"`
}

// NotificationConfig toggles the two notification channels.
type NotificationConfig struct {
	Desktop bool `yaml:"desktop"`
	Sound   bool `yaml:"sound"`
}

// LogConfig mirrors the --debug flag and friends.
type LogConfig struct {
	Debug    bool   `yaml:"debug"`
	File     string `yaml:"file,omitempty"`
	MaxFiles int    `yaml:"max_files"`
}

// ThemeConfig defines color and style settings.
type ThemeConfig struct {
	// Primary color for focused elements (hex, e.g., "#FF5733")
	Primary string `yaml:"primary,omitempty"`

	// Accent color for highlights (hex)
	Accent string `yaml:"accent,omitempty"`

	// Muted color for secondary text (hex)
	Muted string `yaml:"muted,omitempty"`

	// Work and Break color the timer for each phase kind
	Work  string `yaml:"work,omitempty"`
	Break string `yaml:"break,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "j,down"
type KeysConfig struct {
	Quit     string `yaml:"quit,omitempty"`      // default: "q,ctrl+c"
	Help     string `yaml:"help,omitempty"`      // default: "?"
	NextPane string `yaml:"next_pane,omitempty"` // default: "tab"

	Up     string `yaml:"up,omitempty"`     // default: "k,up"
	Down   string `yaml:"down,omitempty"`   // default: "j,down"
	Top    string `yaml:"top,omitempty"`    // default: "g"
	Bottom string `yaml:"bottom,omitempty"` // default: "G"

	// Timer keys
	StartPause string `yaml:"start_pause,omitempty"` // default: "space"
	Reset      string `yaml:"reset,omitempty"`       // default: "r"
	Skip       string `yaml:"skip,omitempty"`        // default: "s"
	Settings   string `yaml:"settings,omitempty"`    // default: ","
	Focus      string `yaml:"focus,omitempty"`       // default: "f"

	// Task keys
	AddTask    string `yaml:"add_task,omitempty"`    // default: "a"
	AddSubtask string `yaml:"add_subtask,omitempty"` // default: "A"
	EditTask   string `yaml:"edit_task,omitempty"`   // default: "e"
	ToggleTask string `yaml:"toggle_task,omitempty"` // default: "d,enter"
	DeleteTask string `yaml:"delete_task,omitempty"` // default: "x"
	SetActive  string `yaml:"set_active,omitempty"`  // default: "."
	MoveUp     string `yaml:"move_up,omitempty"`     // default: "K"
	MoveDown   string `yaml:"move_down,omitempty"`   // default: "J"
	Indent     string `yaml:"indent,omitempty"`      // default: ">"
	Outdent    string `yaml:"outdent,omitempty"`     // default: "<"

	// Input keys
	Confirm string `yaml:"confirm,omitempty"` // default: "enter"
	Cancel  string `yaml:"cancel,omitempty"`  // default: "esc"
}

// UXConfig defines user experience settings.
type UXConfig struct {
	// ConfirmDeletions shows confirmation dialogs before deleting tasks
	ConfirmDeletions bool `yaml:"confirm_deletions"` // default: true

	// Mouse enables click-and-drag reordering in the task pane
	Mouse bool `yaml:"mouse"` // default: true

	// NarrowLayoutThreshold is the terminal width below which to use stacked layout
	NarrowLayoutThreshold int `yaml:"narrow_layout_threshold,omitempty"` // default: 80
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Storage: StorageConfig{Backend: BackendFile},
		Theme: ThemeConfig{
			Primary: "#E5484D", // Tomato
			Accent:  "#30A46C", // Green
			Muted:   "#6B7280", // Gray
			Work:    "#E5484D",
			Break:   "#0090FF",
		},
		UX: UXConfig{
			ConfirmDeletions:      true,
			Mouse:                 true,
			NarrowLayoutThreshold: 80,
		},
		Notifications: NotificationConfig{
			Desktop: true,
			Sound:   true,
		},
		Log: LogConfig{MaxFiles: 20},
	}
}

// defaultDataDir returns the default data directory path.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pomodoro"
	}
	return filepath.Join(home, ".pomodoro")
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pomodoro")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pomodoro")
}

// Path returns the default config file location.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from the default path, merging with defaults.
// If no config file exists, returns default configuration.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads configuration from path. An empty path or a missing file
// yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; fall back to conservative merge if this fails

	cfg.mergeFromYAML(&userCfg, &doc)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the application cannot honour.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.Storage.Backend)
	}
	if c.Log.MaxFiles < 0 {
		return fmt.Errorf("log.max_files must not be negative")
	}
	return nil
}

// mergeNonEmpty applies non-empty values from other to c.
// It intentionally does not touch booleans (those require presence-aware merging).
func (c *Config) mergeNonEmpty(other *Config) {
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.Storage.Backend != "" {
		c.Storage.Backend = strings.ToLower(other.Storage.Backend)
	}

	mergeString(&c.Theme.Primary, other.Theme.Primary)
	mergeString(&c.Theme.Accent, other.Theme.Accent)
	mergeString(&c.Theme.Muted, other.Theme.Muted)
	mergeString(&c.Theme.Work, other.Theme.Work)
	mergeString(&c.Theme.Break, other.Theme.Break)

	k, o := &c.Keys, other.Keys
	mergeString(&k.Quit, o.Quit)
	mergeString(&k.Help, o.Help)
	mergeString(&k.NextPane, o.NextPane)
	mergeString(&k.Up, o.Up)
	mergeString(&k.Down, o.Down)
	mergeString(&k.Top, o.Top)
	mergeString(&k.Bottom, o.Bottom)
	mergeString(&k.StartPause, o.StartPause)
	mergeString(&k.Reset, o.Reset)
	mergeString(&k.Skip, o.Skip)
	mergeString(&k.Settings, o.Settings)
	mergeString(&k.Focus, o.Focus)
	mergeString(&k.AddTask, o.AddTask)
	mergeString(&k.AddSubtask, o.AddSubtask)
	mergeString(&k.EditTask, o.EditTask)
	mergeString(&k.ToggleTask, o.ToggleTask)
	mergeString(&k.DeleteTask, o.DeleteTask)
	mergeString(&k.SetActive, o.SetActive)
	mergeString(&k.MoveUp, o.MoveUp)
	mergeString(&k.MoveDown, o.MoveDown)
	mergeString(&k.Indent, o.Indent)
	mergeString(&k.Outdent, o.Outdent)
	mergeString(&k.Confirm, o.Confirm)
	mergeString(&k.Cancel, o.Cancel)

	if other.UX.NarrowLayoutThreshold > 0 {
		c.UX.NarrowLayoutThreshold = other.UX.NarrowLayoutThreshold
	}

	mergeString(&c.Log.File, other.Log.File)
	if other.Log.MaxFiles != 0 {
		c.Log.MaxFiles = other.Log.MaxFiles
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)

	// Without a node tree we cannot tell "false" from "absent"; keep defaults.
	if doc == nil || len(doc.Content) == 0 {
		return
	}

	if yamlHasPath(doc, "ux", "confirm_deletions") {
		c.UX.ConfirmDeletions = other.UX.ConfirmDeletions
	}
	if yamlHasPath(doc, "ux", "mouse") {
		c.UX.Mouse = other.UX.Mouse
	}
	if yamlHasPath(doc, "notifications", "desktop") {
		c.Notifications.Desktop = other.Notifications.Desktop
	}
	if yamlHasPath(doc, "notifications", "sound") {
		c.Notifications.Sound = other.Notifications.Sound
	}
	if yamlHasPath(doc, "log", "debug") {
		c.Log.Debug = other.Log.Debug
	}
	if yamlHasPath(doc, "log", "max_files") {
		c.Log.MaxFiles = other.Log.MaxFiles
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	// Document -> root mapping.
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	if c.DataDir == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return c.DataDir
	}
	if strings.HasPrefix(c.DataDir, "~/") || strings.HasPrefix(c.DataDir, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, c.DataDir[2:])
		}
	}
	return c.DataDir
}

// DatabasePath is where the sqlite backend keeps its data.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.GetDataDir(), "pomodoro.db")
}
