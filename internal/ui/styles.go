package ui

import (
	"pomodoro/internal/config"
	"pomodoro/internal/timer"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds every style the UI renders with.
type Styles struct {
	ColorPrimary   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorDanger    lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorWork      lipgloss.Color
	ColorBreak     lipgloss.Color
	ColorBgLight   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color

	TitleStyle       lipgloss.Style
	PaneStyle        lipgloss.Style
	PaneFocusedStyle lipgloss.Style
	PaneTitleStyle   lipgloss.Style

	TaskDoneStyle       lipgloss.Style
	TaskPendingStyle    lipgloss.Style
	TaskSelectedStyle   lipgloss.Style
	TaskActiveStyle     lipgloss.Style
	TaskDropStyle       lipgloss.Style
	TaskCheckboxDone    string
	TaskCheckboxPending string
	ActiveMarker        string

	TimerWorkStyle   lipgloss.Style
	TimerBreakStyle  lipgloss.Style
	TimerPausedStyle lipgloss.Style
	SessionDone      string
	SessionPending   string

	HelpStyle    lipgloss.Style
	HelpKeyStyle lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style

	InputPromptStyle lipgloss.Style

	StatLabelStyle lipgloss.Style
	StatValueStyle lipgloss.Style
}

// NewStyles builds styles from the configured theme.
func NewStyles(cfg *config.Config) *Styles {
	return NewStylesFromTheme(&cfg.Theme)
}

// NewStylesFromTheme builds styles from a theme; empty colours take the
// defaults.
func NewStylesFromTheme(theme *config.ThemeConfig) *Styles {
	s := &Styles{}

	s.ColorPrimary = colorOrDefault(theme.Primary, "#E5484D")
	s.ColorAccent = colorOrDefault(theme.Accent, "#30A46C")
	s.ColorMuted = colorOrDefault(theme.Muted, "#6B7280")
	s.ColorWork = colorOrDefault(theme.Work, "#E5484D")
	s.ColorBreak = colorOrDefault(theme.Break, "#0090FF")

	s.ColorDanger = lipgloss.Color("#EF4444")
	s.ColorWarning = lipgloss.Color("#F59E0B")
	s.ColorSuccess = lipgloss.Color("#10B981")
	s.ColorBgLight = lipgloss.Color("#374151")
	s.ColorText = lipgloss.Color("#F9FAFB")
	s.ColorTextMuted = lipgloss.Color("#9CA3AF")

	s.initComponentStyles()
	return s
}

func colorOrDefault(hex, defaultHex string) lipgloss.Color {
	if hex != "" {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(defaultHex)
}

func (s *Styles) initComponentStyles() {
	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorText).
		Background(s.ColorPrimary).
		Padding(0, 1)

	s.PaneStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorMuted).
		Padding(0, 1)

	s.PaneFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorPrimary).
		Padding(0, 1)

	s.PaneTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorPrimary)

	s.TaskDoneStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted).
		Strikethrough(true)

	s.TaskPendingStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.TaskSelectedStyle = lipgloss.NewStyle().
		Background(s.ColorBgLight).
		Foreground(s.ColorText).
		Bold(true)

	s.TaskActiveStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	s.TaskDropStyle = lipgloss.NewStyle().
		Foreground(s.ColorWarning).
		Underline(true)

	s.TaskCheckboxDone = lipgloss.NewStyle().Foreground(s.ColorSuccess).Render("[✓]")
	s.TaskCheckboxPending = lipgloss.NewStyle().Foreground(s.ColorMuted).Render("[ ]")
	s.ActiveMarker = lipgloss.NewStyle().Foreground(s.ColorAccent).Render("▶")

	s.TimerWorkStyle = lipgloss.NewStyle().
		Foreground(s.ColorWork).
		Bold(true)

	s.TimerBreakStyle = lipgloss.NewStyle().
		Foreground(s.ColorBreak).
		Bold(true)

	s.TimerPausedStyle = lipgloss.NewStyle().
		Foreground(s.ColorMuted)

	s.SessionDone = lipgloss.NewStyle().Foreground(s.ColorWork).Render("●")
	s.SessionPending = lipgloss.NewStyle().Foreground(s.ColorMuted).Render("○")

	s.HelpStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.HelpKeyStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	s.StatusStyle = lipgloss.NewStyle().
		Foreground(s.ColorSuccess).
		Italic(true)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(s.ColorDanger).
		Bold(true)

	s.InputPromptStyle = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.StatLabelStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.StatValueStyle = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Bold(true)
}

// PhaseStyle picks the countdown style for a phase and status.
func (s *Styles) PhaseStyle(p timer.Phase, status timer.Status) lipgloss.Style {
	if status == timer.StatusPaused {
		return s.TimerPausedStyle
	}
	if p.Kind() == timer.KindWork {
		return s.TimerWorkStyle
	}
	return s.TimerBreakStyle
}

// RenderHelp renders key/description pairs.
func (s *Styles) RenderHelp(keys ...string) string {
	var result string
	for i := 0; i+1 < len(keys); i += 2 {
		if i > 0 {
			result += "  "
		}
		result += s.HelpKeyStyle.Render("["+keys[i]+"]") + " " + s.HelpStyle.Render(keys[i+1])
	}
	return result
}
