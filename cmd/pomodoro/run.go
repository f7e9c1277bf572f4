package main

import (
	"fmt"
	"io"

	"pomodoro/internal/logging"
	"pomodoro/internal/notify"
	"pomodoro/internal/ui"
)

// RunCmd starts the TUI.
type RunCmd struct {
	NoSound   bool `help:"Disable notification sounds for this run"`
	NoDesktop bool `help:"Disable desktop notifications for this run"`
}

func (r *RunCmd) Run(cli *CLI) error {
	cfg := cli.cfg

	// The TUI owns the terminal, so the bell fallback stays quiet and the app
	// announces phase changes in its status line instead.
	player := notify.NewPlayer()
	player.Bell = io.Discard

	sink := notify.NewSink(notify.NewDesktop(), player, notify.Options{
		Desktop: cfg.Notifications.Desktop && !r.NoDesktop,
		Sound:   cfg.Notifications.Sound && !r.NoSound,
	})

	w, err := openWidget(cfg, sink)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			logging.Logger.Warn("close widget", "error", err)
		}
		// Let an in-flight chime finish before the process exits.
		sink.Wait()
	}()

	appCfg := &ui.AppConfig{
		Keys:                  &cfg.Keys,
		ConfirmDeletions:      cfg.UX.ConfirmDeletions,
		Mouse:                 cfg.UX.Mouse,
		NarrowLayoutThreshold: cfg.UX.NarrowLayoutThreshold,
	}
	if err := ui.Run(w, ui.NewStyles(cfg), appCfg, sink); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}
