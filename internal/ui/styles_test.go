package ui

import (
	"strings"
	"testing"

	"pomodoro/internal/config"
	"pomodoro/internal/timer"

	"github.com/charmbracelet/lipgloss"
)

func TestNewStyles_UsesThemeColors(t *testing.T) {
	styles := NewStylesFromTheme(&config.ThemeConfig{
		Primary: "#FF0000",
		Accent:  "#00FF00",
		Muted:   "#0000FF",
		Work:    "#111111",
		Break:   "#222222",
	})

	checks := []struct {
		name string
		got  lipgloss.Color
		want string
	}{
		{"primary", styles.ColorPrimary, "#FF0000"},
		{"accent", styles.ColorAccent, "#00FF00"},
		{"muted", styles.ColorMuted, "#0000FF"},
		{"work", styles.ColorWork, "#111111"},
		{"break", styles.ColorBreak, "#222222"},
	}
	for _, c := range checks {
		if c.got != lipgloss.Color(c.want) {
			t.Errorf("%s = %v, want %s", c.name, c.got, c.want)
		}
	}
}

func TestNewStyles_UsesDefaults(t *testing.T) {
	styles := NewStylesFromTheme(&config.ThemeConfig{})
	if styles.ColorPrimary != lipgloss.Color("#E5484D") {
		t.Errorf("ColorPrimary = %v, want default #E5484D", styles.ColorPrimary)
	}
	if styles.ColorBreak != lipgloss.Color("#0090FF") {
		t.Errorf("ColorBreak = %v, want default #0090FF", styles.ColorBreak)
	}
}

func TestPhaseStyle(t *testing.T) {
	s := createTestStyles()
	tests := []struct {
		phase  timer.Phase
		status timer.Status
		want   lipgloss.Style
	}{
		{timer.PhaseWork, timer.StatusRunning, s.TimerWorkStyle},
		{timer.PhaseBreak, timer.StatusRunning, s.TimerBreakStyle},
		{timer.PhaseLongBreak, timer.StatusIdle, s.TimerBreakStyle},
		{timer.PhaseWork, timer.StatusPaused, s.TimerPausedStyle},
	}
	for _, tc := range tests {
		got := s.PhaseStyle(tc.phase, tc.status)
		if got.GetForeground() != tc.want.GetForeground() {
			t.Errorf("PhaseStyle(%s, %s) foreground = %v, want %v", tc.phase, tc.status, got.GetForeground(), tc.want.GetForeground())
		}
	}
}

func TestRenderHelp(t *testing.T) {
	setupTest(t)
	got := createTestStyles().RenderHelp("a", "add", "d", "done")
	if !strings.Contains(got, "[a] add") || !strings.Contains(got, "[d] done") {
		t.Errorf("RenderHelp = %q", got)
	}
}
