// Package notify tells the user that a timer phase finished: a desktop
// notification plus a short sound. Everything here is best effort.
package notify

import (
	"strings"

	"pomodoro/internal/timer"
)

// Desktop sends desktop notifications.
type Desktop interface {
	// Send shows a notification with the given title and message.
	Send(title, message string) error

	// IsSupported returns true if notifications are supported on this platform.
	IsSupported() bool
}

type noopDesktop struct{}

func (noopDesktop) Send(title, message string) error { return nil }
func (noopDesktop) IsSupported() bool                { return false }

// NewDesktop creates a platform-specific notifier.
// Returns a no-op notifier if the platform doesn't support notifications.
func NewDesktop() Desktop {
	d := newPlatformDesktop()
	if d == nil || !d.IsSupported() {
		return noopDesktop{}
	}
	return d
}

// Message returns the notification text for a completed phase kind.
func Message(kind timer.Kind) (title, body string) {
	if kind == timer.KindWork {
		return "Focus session complete", "Time for a break."
	}
	return "Break is over", "Ready to focus again?"
}

// escapeAppleScript escapes special characters for AppleScript strings.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
