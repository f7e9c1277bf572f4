package main

import (
	"fmt"
	"time"

	"pomodoro/internal/backup"
)

// BackupCmd creates or lists backups.
type BackupCmd struct {
	List  bool `help:"List available backups" short:"l"`
	Prune int  `help:"After creating, keep only the newest N backups" placeholder:"N"`
}

// withManager opens the configured store and hands a backup manager for it
// to fn.
func withManager(cli *CLI, fn func(m *backup.Manager) error) error {
	store, err := openStore(cli.cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()
	return fn(backup.NewManager(store, cli.cfg.GetDataDir(), version))
}

func (c *BackupCmd) Run(cli *CLI) error {
	return withManager(cli, func(m *backup.Manager) error {
		if c.List {
			return listBackups(m)
		}
		if err := createBackup(m); err != nil {
			return err
		}
		if c.Prune > 0 {
			n, err := m.Prune(c.Prune)
			if err != nil {
				return fmt.Errorf("prune backups: %w", err)
			}
			if n > 0 {
				fmt.Printf("  Pruned %d old backup(s)\n", n)
			}
		}
		return nil
	})
}

func createBackup(m *backup.Manager) error {
	name, err := m.Create()
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	info, err := m.Get(name)
	if err != nil {
		return fmt.Errorf("read backup info: %w", err)
	}
	fmt.Printf("✓ Backup created: %s\n", name)
	fmt.Printf("  Tasks: %d (%d done)\n", info.Stats["tasks"], info.Stats["done"])
	fmt.Printf("  Location: %s\n", info.Path)
	return nil
}

func listBackups(m *backup.Manager) error {
	backups, err := m.List()
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}
	if len(backups) == 0 {
		fmt.Println("No backups available.")
		fmt.Println("Run 'pomodoro backup' to create one.")
		return nil
	}
	fmt.Println("Available backups:")
	for _, b := range backups {
		fmt.Printf("  %s  (%s)   Tasks: %d\n", b.Name, formatAge(b.CreatedAt, time.Now()), b.Stats["tasks"])
	}
	return nil
}

// formatAge returns a human-readable age of t as seen at now.
func formatAge(t, now time.Time) string {
	d := now.Sub(t)
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return plural(int(d.Hours()/24/7), "week")
	}
}
