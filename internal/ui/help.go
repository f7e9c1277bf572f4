package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlay renders the key reference.
type HelpOverlay struct {
	width  int
	height int
	styles *Styles

	global GlobalKeyMap
	tasks  TaskKeyMap
	timer  TimerKeyMap
}

func NewHelpOverlay(styles *Styles, global GlobalKeyMap, tasks TaskKeyMap, timer TimerKeyMap) *HelpOverlay {
	return &HelpOverlay{
		styles: styles,
		global: global,
		tasks:  tasks,
		timer:  timer,
	}
}

func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

func (h *HelpOverlay) View() string {
	overlayWidth := 60
	if h.width > 0 {
		overlayWidth = min(60, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent).
		MarginTop(1)

	mutedStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("pomodoro - Keyboard Shortcuts"))
	b.WriteString("\n")

	section := func(title string, bindings ...key.Binding) {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		for _, kb := range bindings {
			b.WriteString(h.row(kb))
		}
	}

	section("Global", h.global.NextPane, h.global.Focus, h.global.Settings, h.global.Help, h.global.Quit)
	section("Timer", h.timer.StartPause, h.timer.Reset, h.timer.Skip)
	section("Tasks", h.tasks.Add, h.tasks.AddSubtask, h.tasks.Edit, h.tasks.Toggle,
		h.tasks.Delete, h.tasks.SetActive)
	section("Arrange", h.tasks.MoveUp, h.tasks.MoveDown, h.tasks.Indent, h.tasks.Outdent,
		h.tasks.Up, h.tasks.Down, h.tasks.Top, h.tasks.Bottom)

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Drag a task onto another to move it; drop on its text to nest."))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("Press ? or Esc to close"))

	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, overlayStyle.Render(b.String()))
}

func (h *HelpOverlay) row(kb key.Binding) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(12)
	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)
	hlp := kb.Help()
	return keyStyle.Render(hlp.Key) + descStyle.Render(hlp.Desc) + "\n"
}

// newHelpBar styles the one-line key hints under the panes.
func newHelpBar(styles *Styles) help.Model {
	h := help.New()
	h.ShortSeparator = "  "
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpStyle
	h.Styles.ShortSeparator = styles.HelpStyle
	h.Styles.Ellipsis = styles.HelpStyle
	return h
}
