package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"pomodoro/internal/timer"
	"pomodoro/internal/widget"
)

// SettingsCmd reads and edits the timer settings.
type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" help:"Print the current settings" default:"1"`
	Set  SettingsSetCmd  `cmd:"" help:"Change one or more settings"`
}

type SettingsShowCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table" short:"f"`
}

func (c *SettingsShowCmd) Run(cli *CLI) error {
	return withWidget(cli, func(w *widget.Widget) error {
		s := w.Timer().Settings
		if c.Format == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		}
		printSettings(s)
		return nil
	})
}

func printSettings(s timer.Settings) {
	writeSettings(os.Stdout, s)
}

func writeSettings(out io.Writer, s timer.Settings) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Focus\t%s min\n", timer.FormatMinutes(s.WorkDuration))
	fmt.Fprintf(tw, "Short break\t%s min\n", timer.FormatMinutes(s.BreakDuration))
	fmt.Fprintf(tw, "Long break\t%s min\n", timer.FormatMinutes(s.LongBreakDuration))
	fmt.Fprintf(tw, "Sessions before long break\t%d\n", s.SessionsBeforeLongBreak)
	fmt.Fprintf(tw, "Sound\t%s\n", s.NotificationSound)
	fmt.Fprintf(tw, "Volume\t%d%%\n", int(s.Volume*100+0.5))
	tw.Flush()
}

// SettingsSetCmd takes the same text the settings form does; a value that
// does not parse is reported and skipped while the rest still apply.
type SettingsSetCmd struct {
	Work      string `help:"Focus length in minutes (25 or m:ss)"`
	Break     string `help:"Short break length in minutes (5 or m:ss)"`
	LongBreak string `help:"Long break length in minutes (15 or m:ss)"`
	Sessions  string `help:"Work sessions before a long break"`
	Sound     string `help:"Notification sound: chime, digital, ring or nature"`
	Volume    string `help:"Volume in percent (0-100)"`
}

// patch parses the given flags. Flags left empty are not part of the patch.
func (c *SettingsSetCmd) patch() (timer.SettingsPatch, []error) {
	var (
		p    timer.SettingsPatch
		errs []error
	)
	minutes := func(flag, raw string, dst **int) {
		if raw == "" {
			return
		}
		v, err := timer.ParseMinutes(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", flag, err))
			return
		}
		*dst = &v
	}
	minutes("work", c.Work, &p.WorkDuration)
	minutes("break", c.Break, &p.BreakDuration)
	minutes("long-break", c.LongBreak, &p.LongBreakDuration)

	if c.Sessions != "" {
		if n, err := timer.ParseSessions(c.Sessions); err != nil {
			errs = append(errs, fmt.Errorf("--sessions: %w", err))
		} else {
			p.SessionsBeforeLongBreak = &n
		}
	}
	if c.Sound != "" {
		if s, err := timer.ParseSound(c.Sound); err != nil {
			errs = append(errs, fmt.Errorf("--sound: %w", err))
		} else {
			p.NotificationSound = &s
		}
	}
	if c.Volume != "" {
		if v, err := timer.ParseVolume(c.Volume); err != nil {
			errs = append(errs, fmt.Errorf("--volume: %w", err))
		} else {
			p.Volume = &v
		}
	}
	return p, errs
}

func (c *SettingsSetCmd) Run(cli *CLI) error {
	patch, errs := c.patch()
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "Ignored %v\n", err)
	}
	if patch.IsEmpty() {
		if len(errs) > 0 {
			return fmt.Errorf("no valid settings given")
		}
		return fmt.Errorf("nothing to change; see --help")
	}
	return withWidget(cli, func(w *widget.Widget) error {
		if !w.UpdateSettings(patch) {
			fmt.Println("Settings unchanged.")
			return nil
		}
		fmt.Println("✓ Settings saved")
		printSettings(w.Timer().Settings)
		return nil
	})
}
