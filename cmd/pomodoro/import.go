package main

import (
	"fmt"
	"os"
	"strings"

	"pomodoro/internal/importer"
	"pomodoro/internal/widget"
)

// ImportCmd brings tasks in from another tool's export.
type ImportCmd struct {
	Format string `arg:"" help:"Export format: todoist or taskwarrior" enum:"todoist,taskwarrior"`
	File   string `arg:"" help:"Export file" type:"existingfile"`
	DryRun bool   `help:"Preview the import without changing anything"`
}

// previewLimit caps the dry-run listing.
const previewLimit = 20

func (c *ImportCmd) Run(cli *CLI) error {
	imp := importer.Get(c.Format)
	if imp == nil {
		return fmt.Errorf("unknown format %q (supported: %s)", c.Format, strings.Join(importer.SupportedFormats(), ", "))
	}

	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	items, err := imp.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", c.File, err)
	}
	if len(items) == 0 {
		fmt.Println("No tasks found to import.")
		return nil
	}

	if c.DryRun {
		printPreview(items)
		return nil
	}

	return withWidget(cli, func(w *widget.Widget) error {
		res := importer.Import(items, w)
		fmt.Println("Import complete!")
		fmt.Printf("  Imported: %d tasks (%d already done)\n", res.Imported, res.Completed)
		if len(res.Errors) > 0 {
			fmt.Printf("  Errors:   %d\n", len(res.Errors))
			for _, e := range res.Errors {
				fmt.Printf("    - %s\n", e)
			}
		}
		return nil
	})
}

func printPreview(items []importer.Item) {
	fmt.Printf("Preview: %d tasks to import\n", len(items))
	fmt.Println("────────────────────────────")
	for i, it := range items {
		if i == previewLimit {
			fmt.Printf("  ... and %d more\n", len(items)-previewLimit)
			break
		}
		box := "[ ]"
		if it.Done {
			box = "[x]"
		}
		fmt.Printf("  %s%s %s\n", strings.Repeat("  ", it.Depth), box, it.Text)
	}
	fmt.Println()
	fmt.Println("Run without --dry-run to import.")
}
