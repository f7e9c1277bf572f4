package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pomodoro/internal/logging"
	"pomodoro/internal/timer"
)

// Sink delivers phase-complete notifications. It satisfies timer.Notifier:
// Notify returns immediately and the work happens in the background.
type Sink struct {
	desktop Desktop
	player  Player
	opts    Options
	wg      sync.WaitGroup
}

var _ timer.Notifier = (*Sink)(nil)

// Options switches the notification channels on or off.
type Options struct {
	Desktop bool
	Sound   bool
	// Timeout bounds a single delivery. Zero means 10s.
	Timeout time.Duration
}

// NewSink wires desktop and player together. Nil collaborators disable the
// matching channel.
func NewSink(desktop Desktop, player Player, opts Options) *Sink {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Sink{desktop: desktop, player: player, opts: opts}
}

// Notify announces that a phase of the given kind finished.
func (s *Sink) Notify(kind timer.Kind, sound timer.Sound, volume float64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
		defer cancel()
		_ = s.deliver(ctx, kind, sound, volume)
	}()
}

// deliver runs both channels to completion. They share the timeout but not
// cancellation: a failed desktop notification must not cut the sound short.
// Each failure is logged; the first one is returned.
func (s *Sink) deliver(ctx context.Context, kind timer.Kind, sound timer.Sound, volume float64) error {
	var g errgroup.Group
	if s.opts.Desktop && s.desktop != nil {
		g.Go(func() error {
			title, body := Message(kind)
			if err := s.desktop.Send(title, body); err != nil {
				logging.Logger.Warn("desktop notification failed", "kind", kind, "error", err)
				return fmt.Errorf("desktop: %w", err)
			}
			return nil
		})
	}
	if s.opts.Sound && s.player != nil {
		g.Go(func() error {
			if err := s.player.Play(ctx, sound, kind, volume); err != nil {
				logging.Logger.Warn("notification sound failed", "kind", kind, "sound", sound, "error", err)
				return fmt.Errorf("sound: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Preview plays the work variant of sound synchronously, for the settings
// "test sound" action. It ignores the Sound option.
func (s *Sink) Preview(ctx context.Context, sound timer.Sound, volume float64) error {
	if s.player == nil {
		return nil
	}
	return s.player.Play(ctx, sound, timer.KindWork, volume)
}

// Wait blocks until every pending notification has been delivered.
func (s *Sink) Wait() {
	s.wg.Wait()
}
