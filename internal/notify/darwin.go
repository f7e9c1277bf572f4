//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
	"strconv"

	"pomodoro/internal/timer"
)

// darwinDesktop implements notifications for macOS using osascript.
type darwinDesktop struct{}

func newPlatformDesktop() Desktop {
	return &darwinDesktop{}
}

// IsSupported returns true if osascript is available.
func (d *darwinDesktop) IsSupported() bool {
	_, err := exec.LookPath("osascript")
	return err == nil
}

// Send shows the notification silently; sound is played separately so the
// configured volume applies.
func (d *darwinDesktop) Send(title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(message), escapeAppleScript(title))
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("osascript failed: %w", err)
	}
	return nil
}

const darwinSoundDir = "/System/Library/Sounds"

var darwinSounds = map[timer.Sound][2]string{
	timer.SoundChime:   {"Glass.aiff", "Tink.aiff"},
	timer.SoundDigital: {"Ping.aiff", "Pop.aiff"},
	timer.SoundRing:    {"Hero.aiff", "Submarine.aiff"},
	timer.SoundNature:  {"Blow.aiff", "Purr.aiff"},
}

func newPlatformPlayer() *CommandPlayer {
	return &CommandPlayer{
		Binary: "afplay",
		Dir:    darwinSoundDir,
		Files:  darwinSounds,
		Args: func(file string, volume float64) []string {
			return []string{"-v", strconv.FormatFloat(volume, 'f', 2, 64), file}
		},
	}
}
