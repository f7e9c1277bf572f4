package main

import (
	"fmt"
	"os"

	"pomodoro/internal/config"
	"pomodoro/internal/logging"
	"pomodoro/internal/storage"
	"pomodoro/internal/timer"
	"pomodoro/internal/widget"

	"github.com/alecthomas/kong"
)

// CLI is the command-line interface.
type CLI struct {
	Version kong.VersionFlag `help:"Show version information" short:"v"`
	Debug   bool             `help:"Enable debug logging to file" short:"d" env:"POMODORO_DEBUG"`
	Config  string           `help:"Path to config.yaml" type:"path" placeholder:"PATH"`
	DataDir string           `help:"Directory holding tasks and settings" type:"path" placeholder:"DIR" env:"POMODORO_DATA_DIR"`

	Run      RunCmd      `cmd:"" help:"Start the timer TUI (default)" default:"1"`
	Tasks    TasksCmd    `cmd:"" help:"List and edit tasks"`
	Settings SettingsCmd `cmd:"" help:"Show or change timer settings"`
	Backup   BackupCmd   `cmd:"" help:"Create or list backups"`
	Restore  RestoreCmd  `cmd:"" help:"Restore data from a backup"`
	Export   ExportCmd   `cmd:"" help:"Export tasks and settings as Markdown or JSON"`
	Import   ImportCmd   `cmd:"" help:"Import tasks from Todoist or Taskwarrior"`
	Ver      VersionCmd  `cmd:"version" help:"Print version information"`

	cfg *config.Config `kong:"-"`
}

// AfterApply loads the configuration and starts logging once flags are
// parsed. Flags win over the config file.
func (c *CLI) AfterApply() error {
	path := c.Config
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	if c.DataDir != "" {
		cfg.DataDir = c.DataDir
	}
	if c.Debug {
		cfg.Log.Debug = true
	}
	c.cfg = cfg

	logFile, err := logging.Init(logging.Options{
		Debug:    cfg.Log.Debug,
		File:     cfg.Log.File,
		MaxFiles: cfg.Log.MaxFiles,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	} else if logFile != "" {
		// Child processes (sound players) share the debug setting.
		os.Setenv(logging.DebugEnv, "1")
	}
	logging.Logger.Info("starting", "version", version, "data_dir", cfg.GetDataDir(), "backend", cfg.Storage.Backend)
	return nil
}

// openStore opens the configured storage backend.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return storage.NewSQLiteStore(cfg.DatabasePath())
	default:
		return storage.NewFileStore(cfg.GetDataDir())
	}
}

// openWidget opens the store and loads the widget on top of it. Closing the
// widget closes the store.
func openWidget(cfg *config.Config, notifier timer.Notifier) (*widget.Widget, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	w, err := widget.New(widget.Options{Store: store, Notifier: notifier})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return w, nil
}

// VersionCmd prints build information.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	fmt.Println(versionInfo())
	return nil
}
