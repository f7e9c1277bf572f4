package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"pomodoro/internal/timer"
)

// Player plays the sound for a completed phase.
type Player interface {
	Play(ctx context.Context, sound timer.Sound, kind timer.Kind, volume float64) error
}

// CommandPlayer plays sound files through an external binary. When the
// binary or the file is unavailable it rings the terminal bell instead.
type CommandPlayer struct {
	Binary string
	Dir    string
	// Files maps each sound to its work and break variants.
	Files map[timer.Sound][2]string
	Args  func(file string, volume float64) []string

	// Hooks for tests; nil means the real thing.
	Run      func(ctx context.Context, name string, args ...string) error
	LookPath func(string) (string, error)
	// Bell receives the fallback bell. Nil means stderr; a caller that owns
	// the terminal sets io.Discard.
	Bell io.Writer
}

// NewPlayer returns the player for the current platform.
func NewPlayer() *CommandPlayer {
	return newPlatformPlayer()
}

// File returns the path played for sound and kind, or "" if none is mapped.
func (p *CommandPlayer) File(sound timer.Sound, kind timer.Kind) string {
	variants, ok := p.Files[sound]
	if !ok {
		return ""
	}
	name := variants[0]
	if kind == timer.KindBreak {
		name = variants[1]
	}
	return filepath.Join(p.Dir, name)
}

// Play is a no-op at volume 0.
func (p *CommandPlayer) Play(ctx context.Context, sound timer.Sound, kind timer.Kind, volume float64) error {
	if volume <= 0 {
		return nil
	}
	file := p.File(sound, kind)
	if p.Binary == "" || file == "" || !p.available(file) {
		return p.ring()
	}
	if err := p.run(ctx, p.Binary, p.Args(file, volume)...); err != nil {
		return fmt.Errorf("play %s: %w", sound, err)
	}
	return nil
}

func (p *CommandPlayer) available(file string) bool {
	look := p.LookPath
	if look == nil {
		look = exec.LookPath
	}
	if _, err := look(p.Binary); err != nil {
		return false
	}
	_, err := os.Stat(file)
	return err == nil
}

func (p *CommandPlayer) run(ctx context.Context, name string, args ...string) error {
	if p.Run != nil {
		return p.Run(ctx, name, args...)
	}
	return exec.CommandContext(ctx, name, args...).Run()
}

func (p *CommandPlayer) ring() error {
	w := p.Bell
	if w == nil {
		w = os.Stderr
	}
	_, err := io.WriteString(w, "\a")
	return err
}
