package ui

import (
	"fmt"
	"strings"

	"pomodoro/internal/config"
	"pomodoro/internal/tasktree"
	"pomodoro/internal/timer"
	"pomodoro/internal/widget"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// FocusView hides everything but the active task and the countdown.
type FocusView struct {
	widget *widget.Widget
	task   tasktree.Task
	state  timer.State
	width  int
	height int
	styles *Styles

	timerKeys TimerKeyMap
	exit      key.Binding
	complete  key.Binding
}

func NewFocusView(w *widget.Widget, styles *Styles, keyCfg *config.KeysConfig) *FocusView {
	if keyCfg == nil {
		keyCfg = &config.KeysConfig{}
	}
	return &FocusView{
		widget:    w,
		state:     w.Timer(),
		styles:    styles,
		timerKeys: NewTimerKeyMap(keyCfg),
		exit: key.NewBinding(
			key.WithKeys(append(parseKeys(keyCfg.Focus, "f"), "esc")...),
			key.WithHelp("f/esc", "leave focus"),
		),
		complete: key.NewBinding(
			key.WithKeys(parseKeys(keyCfg.ToggleTask, "d", "enter")...),
			key.WithHelp("d", "done"),
		),
	}
}

func (f *FocusView) SetSize(width, height int) {
	f.width = width
	f.height = height
}

func (f *FocusView) SetTask(t tasktree.Task) { f.task = t }

func (f *FocusView) SetState(st timer.State) { f.state = st }

// focusExitMsg asks the app to leave focus mode.
type focusExitMsg struct{}

func (f *FocusView) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(keyMsg, f.exit):
		return func() tea.Msg { return focusExitMsg{} }
	case key.Matches(keyMsg, f.complete):
		// Completing the task clears it as active, which ends focus mode.
		return toggleTaskCmd(f.widget, f.task.ID)
	case key.Matches(keyMsg, f.timerKeys.StartPause):
		f.widget.StartPause()
	case key.Matches(keyMsg, f.timerKeys.Reset):
		f.widget.Reset()
	case key.Matches(keyMsg, f.timerKeys.Skip):
		f.widget.Skip()
	}
	return nil
}

func (f *FocusView) View() string {
	st := f.state
	width := max(20, min(60, f.width-4))

	var b strings.Builder
	b.WriteString(f.styles.StatLabelStyle.Render(strings.ToUpper(st.Phase.Label())))
	b.WriteString("\n\n")
	b.WriteString(f.styles.TaskActiveStyle.Render(runewidth.Truncate(f.task.Text, width, "…")))
	b.WriteString("\n\n")
	b.WriteString(f.styles.PhaseStyle(st.Phase, st.Status).Render(FormatClock(st.SecondsLeft)))
	b.WriteString("\n\n")
	b.WriteString(f.styles.PhaseStyle(st.Phase, timer.StatusRunning).Render(ProgressBar(st.Progress(), width)))
	b.WriteString("\n")
	b.WriteString(f.styles.StatLabelStyle.Render(fmt.Sprintf("Session %d of %d",
		st.CurrentSessionInCycle, st.Settings.SessionsBeforeLongBreak)))
	b.WriteString("\n\n")
	b.WriteString(f.styles.RenderHelp("space", "start/pause", "d", "done", "f/esc", "leave"))

	body := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(b.String())
	return lipgloss.Place(f.width, f.height, lipgloss.Center, lipgloss.Center, body)
}
