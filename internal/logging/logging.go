// Package logging owns the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Logger is shared by every package. It discards everything until Init
// enables debug logging.
var Logger = discard()

// DebugEnv turns debug logging on when set to "1".
const DebugEnv = "POMODORO_DEBUG"

// Options controls where logs go.
type Options struct {
	Debug bool
	// File pins the log to a single path and disables rotation.
	File string
	// MaxFiles is how many per-run logs to keep in the state dir; 0 keeps all.
	MaxFiles int
	// Dir overrides the state directory used for per-run logs.
	Dir string
}

// Init configures Logger and returns the path of the log file, or "" when
// logging stays disabled.
func Init(opts Options) (string, error) {
	if os.Getenv(DebugEnv) == "1" {
		opts.Debug = true
	}
	if !opts.Debug && opts.File == "" {
		Logger = discard()
		return "", nil
	}

	path := opts.File
	if path == "" {
		dir := opts.Dir
		if dir == "" {
			d, err := StateDir()
			if err != nil {
				return "", fmt.Errorf("log dir: %w", err)
			}
			dir = d
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create log dir: %w", err)
		}
		if opts.MaxFiles > 0 {
			if err := rotate(dir, opts.MaxFiles); err != nil {
				fmt.Fprintf(os.Stderr, "warning: log rotation failed: %v\n", err)
			}
		}
		path = filepath.Join(dir, uuid.NewString()+".log")
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log file: %w", err)
	}
	Logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Logger.Info("logging started", "file", path, "pid", os.Getpid())
	return path, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// rotate deletes the oldest *.log files so that, with the log about to be
// created, at most max remain.
func rotate(dir string, max int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read log dir: %w", err)
	}

	type logFile struct {
		path string
		mod  time.Time
	}
	var files []logFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".log" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: filepath.Join(dir, e.Name()), mod: info.ModTime()})
	}
	if len(files) < max {
		return nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })
	for _, f := range files[:len(files)-max+1] {
		if err := os.Remove(f.path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: remove old log %s: %v\n", f.path, err)
		}
	}
	return nil
}

// StateDir returns the per-OS directory for logs.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "pomodoro"), nil
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(base, "pomodoro", "logs"), nil
	default:
		base := os.Getenv("XDG_STATE_HOME")
		if base == "" {
			base = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(base, "pomodoro"), nil
	}
}
