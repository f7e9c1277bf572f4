//go:build linux

package notify

import (
	"fmt"
	"os/exec"
	"strconv"

	"pomodoro/internal/timer"
)

// linuxDesktop implements notifications for Linux using notify-send.
type linuxDesktop struct{}

func newPlatformDesktop() Desktop {
	return &linuxDesktop{}
}

// IsSupported returns true if notify-send is available.
func (d *linuxDesktop) IsSupported() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

func (d *linuxDesktop) Send(title, message string) error {
	cmd := exec.Command("notify-send", "--app-name=pomodoro", "--urgency=normal", title, message)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify-send failed: %w", err)
	}
	return nil
}

const linuxSoundDir = "/usr/share/sounds/freedesktop/stereo"

// Freedesktop theme sounds, work variant first.
var linuxSounds = map[timer.Sound][2]string{
	timer.SoundChime:   {"complete.oga", "bell.oga"},
	timer.SoundDigital: {"alarm-clock-elapsed.oga", "message.oga"},
	timer.SoundRing:    {"phone-incoming-call.oga", "phone-outgoing-busy.oga"},
	timer.SoundNature:  {"dialog-information.oga", "service-login.oga"},
}

// paplay takes volume as an integer where 65536 is 100%.
func newPlatformPlayer() *CommandPlayer {
	return &CommandPlayer{
		Binary: "paplay",
		Dir:    linuxSoundDir,
		Files:  linuxSounds,
		Args: func(file string, volume float64) []string {
			return []string{"--volume=" + strconv.Itoa(int(volume*65536)), file}
		},
	}
}
