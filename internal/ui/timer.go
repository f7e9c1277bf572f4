package ui

import (
	"fmt"
	"strings"

	"pomodoro/internal/config"
	"pomodoro/internal/timer"
	"pomodoro/internal/widget"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TimerPane shows the countdown and drives the timer commands.
type TimerPane struct {
	widget  *widget.Widget
	state   timer.State
	active  string
	focused bool
	width   int
	height  int
	styles  *Styles
	keys    TimerKeyMap
}

func NewTimerPane(w *widget.Widget, styles *Styles, keyCfg *config.KeysConfig) *TimerPane {
	return &TimerPane{
		widget: w,
		state:  w.Timer(),
		styles: styles,
		keys:   NewTimerKeyMap(keyCfg),
	}
}

func (p *TimerPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *TimerPane) SetFocused(focused bool) { p.focused = focused }

// SetState replaces the displayed state.
func (p *TimerPane) SetState(st timer.State) { p.state = st }

// State returns the displayed state.
func (p *TimerPane) State() timer.State { return p.state }

// SetActiveTask sets the text shown under the countdown; "" hides it.
func (p *TimerPane) SetActiveTask(text string) { p.active = text }

// Update handles keys and clicks. Timer commands apply immediately; the
// resulting state arrives through the engine subscription.
func (p *TimerPane) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.StartPause):
			p.widget.StartPause()
		case key.Matches(msg, p.keys.Reset):
			p.widget.Reset()
		case key.Matches(msg, p.keys.Skip):
			p.widget.Skip()
		}
	case tea.MouseMsg:
		// Title (1) + phase line (1) + blank (1) puts the clock on row 3.
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y >= 3 && msg.Y <= 4 {
			p.widget.StartPause()
		}
	}
	return nil
}

func (p *TimerPane) View() string {
	st := p.state
	inner := max(10, p.width-4)
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render("TIMER"))
	b.WriteString("\n")
	b.WriteString(p.styles.StatLabelStyle.Render(fmt.Sprintf("%s · Session %d of %d",
		st.Phase.Label(), st.CurrentSessionInCycle, st.Settings.SessionsBeforeLongBreak)))
	b.WriteString("\n\n")

	clock := p.styles.PhaseStyle(st.Phase, st.Status).Render(FormatClock(st.SecondsLeft))
	b.WriteString(lipgloss.PlaceHorizontal(inner, lipgloss.Center, clock))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(inner, lipgloss.Center, p.statusText()))
	b.WriteString("\n\n")

	b.WriteString(p.styles.PhaseStyle(st.Phase, timer.StatusRunning).Render(ProgressBar(st.Progress(), inner)))
	b.WriteString("\n")
	b.WriteString(p.sessionDots())
	b.WriteString("\n\n")

	if p.active != "" {
		text := runewidth.Truncate(p.active, max(5, inner-12), "…")
		b.WriteString(p.styles.StatLabelStyle.Render("Working on: ") + p.styles.TaskActiveStyle.Render(text))
		b.WriteString("\n")
	}
	b.WriteString(p.styles.StatLabelStyle.Render("Completed: ") +
		p.styles.StatValueStyle.Render(fmt.Sprintf("%d", st.SessionsCompleted)))
	b.WriteString("\n")

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}

func (p *TimerPane) statusText() string {
	switch p.state.Status {
	case timer.StatusRunning:
		return p.styles.StatusStyle.Render("running")
	case timer.StatusPaused:
		return p.styles.TimerPausedStyle.Render("paused")
	default:
		return p.styles.StatLabelStyle.Render("press space to start")
	}
}

// sessionDots marks the work sessions of the current cycle that are done.
func (p *TimerPane) sessionDots() string {
	st := p.state
	// During a short break the cycle counter already points at the next
	// session, so the same formula holds.
	done := st.CurrentSessionInCycle - 1
	if st.Phase == timer.PhaseLongBreak {
		done = st.Settings.SessionsBeforeLongBreak
	}
	dots := make([]string, 0, st.Settings.SessionsBeforeLongBreak)
	for i := 0; i < st.Settings.SessionsBeforeLongBreak; i++ {
		if i < done {
			dots = append(dots, p.styles.SessionDone)
		} else {
			dots = append(dots, p.styles.SessionPending)
		}
	}
	return strings.Join(dots, " ")
}

// FormatClock renders seconds as MM:SS, or H:MM:SS from an hour up.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds/60)%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// ProgressBar renders a fraction in [0,1] as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	fraction = min(1, max(0, fraction))
	filled := int(fraction*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
