package main

import (
	"fmt"
	"os"

	"pomodoro/internal/fsutil"
	"pomodoro/internal/reports"
)

// ExportCmd writes a report of the task tree and timer settings.
type ExportCmd struct {
	Format string `help:"Output format: md or json" enum:"md,markdown,json" default:"md" short:"f"`
	Output string `help:"Write to this file instead of stdout" type:"path" short:"o"`
}

func (c *ExportCmd) Run(cli *CLI) error {
	store, err := openStore(cli.cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	report, err := reports.NewGenerator(store).Generate()
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	var out []byte
	switch c.Format {
	case "json":
		out, err = reports.FormatJSON(report)
		if err != nil {
			return err
		}
	default:
		out = []byte(reports.FormatMarkdown(report))
	}

	if c.Output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := fsutil.WriteFileAtomic(c.Output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", c.Output, err)
	}
	fmt.Fprintf(os.Stderr, "✓ Report written to %s\n", c.Output)
	return nil
}
