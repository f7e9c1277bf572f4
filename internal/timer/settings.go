// Package timer implements the Pomodoro phase cycle: work sessions separated
// by short breaks, with a long break after a configured number of sessions.
package timer

import (
	"fmt"
	"strconv"
	"strings"
)

// Sound identifies one of the built-in notification sounds.
type Sound string

const (
	SoundChime   Sound = "chime"
	SoundDigital Sound = "digital"
	SoundRing    Sound = "ring"
	SoundNature  Sound = "nature"
)

// Sounds returns every supported notification sound in display order.
func Sounds() []Sound {
	return []Sound{SoundChime, SoundDigital, SoundRing, SoundNature}
}

// Valid reports whether s is one of the supported sounds.
func (s Sound) Valid() bool {
	switch s {
	case SoundChime, SoundDigital, SoundRing, SoundNature:
		return true
	}
	return false
}

// Settings are the user-editable timer options. Durations are in seconds.
type Settings struct {
	WorkDuration            int     `json:"workDuration"`
	BreakDuration           int     `json:"breakDuration"`
	LongBreakDuration       int     `json:"longBreakDuration"`
	SessionsBeforeLongBreak int     `json:"sessionsBeforeLongBreak"`
	NotificationSound       Sound   `json:"notificationSound"`
	Volume                  float64 `json:"volume"`
}

// DefaultSettings returns the classic 25/5/15 cycle with four sessions
// before a long break.
func DefaultSettings() Settings {
	return Settings{
		WorkDuration:            25 * 60,
		BreakDuration:           5 * 60,
		LongBreakDuration:       15 * 60,
		SessionsBeforeLongBreak: 4,
		NotificationSound:       SoundChime,
		Volume:                  0.8,
	}
}

// Duration returns the configured length of phase p in seconds.
func (s Settings) Duration(p Phase) int {
	switch p {
	case PhaseBreak:
		return s.BreakDuration
	case PhaseLongBreak:
		return s.LongBreakDuration
	default:
		return s.WorkDuration
	}
}

// Sanitized returns a copy of s where every invalid field has been replaced
// by its default value.
func (s Settings) Sanitized() Settings {
	def := DefaultSettings()
	if s.WorkDuration <= 0 {
		s.WorkDuration = def.WorkDuration
	}
	if s.BreakDuration <= 0 {
		s.BreakDuration = def.BreakDuration
	}
	if s.LongBreakDuration <= 0 {
		s.LongBreakDuration = def.LongBreakDuration
	}
	if s.SessionsBeforeLongBreak < 1 {
		s.SessionsBeforeLongBreak = def.SessionsBeforeLongBreak
	}
	if !s.NotificationSound.Valid() {
		s.NotificationSound = def.NotificationSound
	}
	if !validVolume(s.Volume) {
		s.Volume = def.Volume
	}
	return s
}

// SettingsPatch is a partial settings update. Nil fields are left untouched.
type SettingsPatch struct {
	WorkDuration            *int
	BreakDuration           *int
	LongBreakDuration       *int
	SessionsBeforeLongBreak *int
	NotificationSound       *Sound
	Volume                  *float64
}

// IsEmpty reports whether the patch carries no fields at all.
func (p SettingsPatch) IsEmpty() bool {
	return p.WorkDuration == nil && p.BreakDuration == nil && p.LongBreakDuration == nil &&
		p.SessionsBeforeLongBreak == nil && p.NotificationSound == nil && p.Volume == nil
}

// Apply merges the valid fields of p into s. Invalid fields are dropped
// individually and the previous value is kept. The second result reports
// whether anything changed.
func (s Settings) Apply(p SettingsPatch) (Settings, bool) {
	out := s
	if p.WorkDuration != nil && *p.WorkDuration > 0 {
		out.WorkDuration = *p.WorkDuration
	}
	if p.BreakDuration != nil && *p.BreakDuration > 0 {
		out.BreakDuration = *p.BreakDuration
	}
	if p.LongBreakDuration != nil && *p.LongBreakDuration > 0 {
		out.LongBreakDuration = *p.LongBreakDuration
	}
	if p.SessionsBeforeLongBreak != nil && *p.SessionsBeforeLongBreak >= 1 {
		out.SessionsBeforeLongBreak = *p.SessionsBeforeLongBreak
	}
	if p.NotificationSound != nil && p.NotificationSound.Valid() {
		out.NotificationSound = *p.NotificationSound
	}
	if p.Volume != nil && validVolume(*p.Volume) {
		out.Volume = *p.Volume
	}
	return out, out != s
}

func validVolume(v float64) bool {
	return v >= 0 && v <= 1
}

// MaxDuration caps any phase length, in seconds.
const MaxDuration = 24 * 60 * 60

// ParseMinutes converts user input in minutes, either whole ("25") or
// "m:ss" ("1:30"), to a duration in seconds. Non-numeric, non-positive and
// over-long input is rejected.
func ParseMinutes(raw string) (int, error) {
	text := strings.TrimSpace(raw)
	mins, secs, hasSecs := strings.Cut(text, ":")
	n, err := strconv.Atoi(mins)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if n < 0 || strings.HasPrefix(mins, "-") {
		return 0, fmt.Errorf("must be positive: %q", raw)
	}
	if n > MaxDuration/60 {
		return 0, fmt.Errorf("longer than 24 hours: %q", raw)
	}
	total := n * 60
	if hasSecs {
		sec, err := strconv.Atoi(secs)
		if err != nil || len(secs) != 2 || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("seconds must be 00-59: %q", raw)
		}
		total += sec
	}
	if total <= 0 {
		return 0, fmt.Errorf("must be positive: %q", raw)
	}
	if total > MaxDuration {
		return 0, fmt.Errorf("longer than 24 hours: %q", raw)
	}
	return total, nil
}

// FormatMinutes renders seconds the way ParseMinutes reads them: whole
// minutes as "25", anything else as "m:ss".
func FormatMinutes(seconds int) string {
	if seconds%60 == 0 {
		return strconv.Itoa(seconds / 60)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ParseSessions parses the number of work sessions before a long break.
func ParseSessions(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1: %d", n)
	}
	return n, nil
}

// ParseVolume parses a volume given as a percentage (0-100).
func ParseVolume(raw string) (float64, error) {
	s := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("volume out of range 0-100: %d", n)
	}
	return float64(n) / 100, nil
}

// ParseSound parses a notification sound name.
func ParseSound(raw string) (Sound, error) {
	s := Sound(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown sound %q (want chime, digital, ring or nature)", raw)
	}
	return s, nil
}
