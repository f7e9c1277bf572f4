package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"pomodoro/internal/backup"
)

// RestoreCmd replaces the current data with a backup. A safety backup of
// the current data is taken first.
type RestoreCmd struct {
	Name   string `arg:"" optional:"" help:"Backup name (see 'pomodoro backup --list')"`
	Latest bool   `help:"Restore the most recent backup"`
	Force  bool   `help:"Skip the confirmation prompt" short:"f"`
}

func (c *RestoreCmd) Run(cli *CLI) error {
	if c.Name == "" && !c.Latest {
		return fmt.Errorf("no backup specified; use 'pomodoro restore NAME' or 'pomodoro restore --latest'")
	}
	return withManager(cli, func(m *backup.Manager) error {
		name := c.Name
		if c.Latest {
			backups, err := m.List()
			if err != nil {
				return fmt.Errorf("list backups: %w", err)
			}
			if len(backups) == 0 {
				return fmt.Errorf("no backups available")
			}
			name = backups[0].Name
		}

		info, err := m.Get(name)
		if err != nil {
			return err
		}
		fmt.Printf("Restoring from backup: %s\n", info.Name)
		fmt.Printf("  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Tasks: %d (%d done)\n\n", info.Stats["tasks"], info.Stats["done"])

		if !c.Force && !confirm("This will overwrite your current data. Continue?") {
			fmt.Println("Restore cancelled.")
			return nil
		}

		safety, err := m.Restore(name)
		if err != nil {
			return fmt.Errorf("restore backup: %w", err)
		}
		if safety != "" {
			fmt.Printf("✓ Safety backup: %s\n", safety)
		}
		fmt.Printf("✓ Restored successfully from %s\n", name)
		return nil
	})
}

func confirm(question string) bool {
	fmt.Printf("⚠ %s [y/N] ", question)
	response, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
