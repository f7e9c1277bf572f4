package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pomodoro/internal/config"
	"pomodoro/internal/logging"
	"pomodoro/internal/timer"
	"pomodoro/internal/widget"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// PaneID identifies each pane in the application.
type PaneID int

const (
	PaneTasks PaneID = iota
	PaneTimer
)

// LayoutMode determines how panes are arranged based on terminal width.
type LayoutMode int

const (
	// LayoutWide shows both panes side by side.
	LayoutWide LayoutMode = iota
	// LayoutNarrow shows only the focused pane with a tab bar.
	LayoutNarrow
)

// Pane content sits inside a rounded border and one column of padding.
const (
	paneInsetX = 2
	paneInsetY = 1
)

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys                  *config.KeysConfig
	ConfirmDeletions      bool
	Mouse                 bool
	NarrowLayoutThreshold int
}

// App is the main application model that coordinates all panes.
type App struct {
	widget      *widget.Widget
	sub         <-chan timer.State
	previewer   Previewer
	styles      *Styles
	config      *AppConfig
	taskPane    *TaskPane
	timerPane   *TimerPane
	focusView   *FocusView
	helpOverlay *HelpOverlay
	settings    *SettingsForm
	confirmDel  *confirmDeleteState
	activePane  PaneID
	layoutMode  LayoutMode
	showHelp    bool
	focusMode   bool
	width       int
	height      int
	status      string
	statusErr   bool
	statusUntil time.Time
	quitting    bool

	keys     GlobalKeyMap
	helpKeys HelpKeyMap
	helpBar  help.Model

	// Pane positions for mouse routing (x coordinates)
	tasksPaneStart int
	tasksPaneEnd   int
	timerPaneStart int
	timerPaneEnd   int
	contentTop     int
}

type confirmDeleteState struct {
	title string
	body  string
	cmd   tea.Cmd
}

// NewApp builds the app around w. The previewer may be nil, in which case
// the settings form's test sound does nothing.
func NewApp(w *widget.Widget, styles *Styles, cfg *AppConfig, previewer Previewer) *App {
	if cfg == nil {
		cfg = &AppConfig{
			ConfirmDeletions:      true,
			Mouse:                 true,
			NarrowLayoutThreshold: 80,
		}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}

	taskPane := NewTaskPane(w, styles, cfg.Keys, cfg.Mouse)
	timerPane := NewTimerPane(w, styles, cfg.Keys)
	keys := NewGlobalKeyMap(cfg.Keys)

	a := &App{
		widget:      w,
		sub:         w.Subscribe(),
		previewer:   previewer,
		styles:      styles,
		config:      cfg,
		taskPane:    taskPane,
		timerPane:   timerPane,
		focusView:   NewFocusView(w, styles, cfg.Keys),
		helpOverlay: NewHelpOverlay(styles, keys, taskPane.keys, timerPane.keys),
		activePane:  PaneTasks,
		keys:        keys,
		helpKeys:    DefaultHelpKeyMap(),
		helpBar:     newHelpBar(styles),
	}
	taskPane.SetFocused(true)
	timerPane.SetFocused(false)
	a.syncActive()
	return a
}

// tickMsg expires status messages.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForTimer(a.sub))
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Results of widget commands are handled regardless of what has the
	// keyboard.
	switch msg := msg.(type) {
	case timerStateMsg:
		st := timer.State(msg)
		if prev := a.timerPane.State(); prev.Phase != st.Phase {
			a.SetStatus(phaseChangeStatus(prev.Phase, st.Phase), false)
		}
		a.timerPane.SetState(st)
		a.focusView.SetState(st)
		return a, waitForTimer(a.sub)

	case timerClosedMsg:
		return a, nil

	case tasksChangedMsg:
		switch {
		case msg.err != nil:
			a.SetStatus(msg.err.Error(), true)
		case msg.action != "":
			a.SetStatus(msg.action, false)
		}
		a.refresh()
		return a, nil

	case activeChangedMsg:
		a.refresh()
		if t, ok := a.widget.Task(msg.id); ok && msg.id != "" {
			a.SetStatus("Working on: "+t.Text, false)
		} else {
			a.SetStatus("No active task", false)
		}
		return a, nil

	case focusMsg:
		if msg.err != nil {
			if errors.Is(msg.err, widget.ErrNoActiveTask) {
				a.SetStatus("Pick a task with '.' before entering focus mode", true)
			} else {
				a.SetStatus(msg.err.Error(), true)
			}
			return a, nil
		}
		a.focusMode = true
		a.focusView.SetTask(msg.task)
		a.focusView.SetState(a.widget.Timer())
		return a, nil

	case focusExitMsg:
		a.focusMode = false
		return a, nil

	case settingsAppliedMsg:
		switch {
		case len(msg.ignored) > 0:
			a.SetStatus(ignoredStatus(msg.ignored), true)
		case msg.changed:
			a.SetStatus("Settings saved", false)
		default:
			a.SetStatus("Settings unchanged", false)
		}
		return a, nil

	case previewMsg:
		if msg.err != nil {
			logging.Logger.Warn("sound preview failed", "error", msg.err)
			a.SetStatus("Could not play sound: "+msg.err.Error(), true)
		}
		return a, nil

	case tickMsg:
		if a.status != "" && !a.statusUntil.IsZero() && time.Now().After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		return a, tickCmd()

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil
	}

	if a.settings != nil {
		return a, a.updateSettings(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a, a.handleKey(msg)
	case tea.MouseMsg:
		return a, a.handleMouse(msg)
	}

	if a.activePane == PaneTasks {
		return a, a.taskPane.Update(msg)
	}
	return a, a.timerPane.Update(msg)
}

func (a *App) updateSettings(msg tea.Msg) tea.Cmd {
	_, cmd := a.settings.Update(msg)
	if !a.settings.Completed {
		return cmd
	}
	form := a.settings
	a.settings = nil
	if form.Cancelled {
		a.SetStatus("Canceled", false)
		return nil
	}
	patch, ignored := form.Patch()
	return applySettingsCmd(a.widget, patch, ignored)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.confirmDel != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			cmd := a.confirmDel.cmd
			a.confirmDel = nil
			return cmd
		case "n", "N", "esc":
			a.confirmDel = nil
			a.SetStatus("Canceled", false)
		}
		return nil
	}

	if a.showHelp {
		if key.Matches(msg, a.helpKeys.Close) {
			a.showHelp = false
		}
		return nil
	}

	if a.focusMode {
		if key.Matches(msg, a.keys.Quit) {
			a.quitting = true
			return tea.Quit
		}
		return a.focusView.Update(msg)
	}

	if a.taskPane.IsEditing() {
		return a.taskPane.Update(msg)
	}

	if a.activePane == PaneTasks && a.config.ConfirmDeletions && key.Matches(msg, a.taskPane.keys.Delete) {
		t, ok := a.taskPane.Selected()
		if !ok {
			a.SetStatus("No task selected", true)
			return nil
		}
		body := runewidth.Truncate(t.Text, 60, "…")
		if n := len(a.widget.Descendants(t.ID)); n > 0 {
			body += fmt.Sprintf("\n\nThis also deletes %d subtask(s).", n)
		}
		a.confirmDel = &confirmDeleteState{
			title: "Delete task?",
			body:  body,
			cmd:   deleteTaskCmd(a.widget, t.ID),
		}
		return nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return nil
	case key.Matches(msg, a.keys.NextPane):
		a.switchPane()
		return nil
	case key.Matches(msg, a.keys.Settings):
		a.settings = NewSettingsForm(a.widget.Timer().Settings, a.previewer)
		return a.settings.Init()
	case key.Matches(msg, a.keys.Focus):
		return enterFocusCmd(a.widget)
	}

	if a.activePane == PaneTasks {
		return a.taskPane.Update(msg)
	}
	return a.timerPane.Update(msg)
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.confirmDel != nil {
		if msg.Action == tea.MouseActionPress {
			a.confirmDel = nil
			a.SetStatus("Canceled", false)
		}
		return nil
	}
	if a.showHelp {
		if msg.Action == tea.MouseActionPress {
			a.showHelp = false
		}
		return nil
	}
	if a.focusMode || a.taskPane.IsEditing() {
		return nil
	}

	if a.layoutMode == LayoutNarrow && msg.Action == tea.MouseActionPress && msg.Y == a.contentTop-1 {
		if msg.X < a.width/2 {
			a.setActivePane(PaneTasks)
		} else {
			a.setActivePane(PaneTimer)
		}
		return nil
	}

	// A drag stays with the task pane even when the pointer leaves it.
	pane := a.activePane
	if a.taskPane.drag == nil && msg.Action == tea.MouseActionPress {
		if p := a.paneAtPosition(msg.X); p >= 0 {
			pane = p
			if p != a.activePane {
				a.setActivePane(p)
			}
		}
	}

	local := msg
	local.Y = msg.Y - a.contentTop - paneInsetY
	switch pane {
	case PaneTasks:
		local.X = msg.X - a.tasksPaneStart - paneInsetX
		return a.taskPane.Update(local)
	default:
		local.X = msg.X - a.timerPaneStart - paneInsetX
		return a.timerPane.Update(local)
	}
}

// refresh re-reads the widget after a task change.
func (a *App) refresh() {
	a.taskPane.Refresh()
	a.syncActive()
}

func (a *App) syncActive() {
	t, ok := a.widget.ActiveTask()
	if !ok {
		a.timerPane.SetActiveTask("")
		a.focusMode = false
		return
	}
	a.timerPane.SetActiveTask(t.Text)
	a.focusView.SetTask(t)
}

func (a *App) switchPane() {
	if a.activePane == PaneTasks {
		a.setActivePane(PaneTimer)
	} else {
		a.setActivePane(PaneTasks)
	}
}

func (a *App) setActivePane(pane PaneID) {
	a.activePane = pane
	a.taskPane.SetFocused(pane == PaneTasks)
	a.timerPane.SetFocused(pane == PaneTimer)
}

// paneAtPosition returns the pane under x, or -1.
func (a *App) paneAtPosition(x int) PaneID {
	if a.layoutMode == LayoutNarrow {
		return a.activePane
	}
	if x >= a.tasksPaneStart && x < a.tasksPaneEnd {
		return PaneTasks
	}
	if x >= a.timerPaneStart && x < a.timerPaneEnd {
		return PaneTimer
	}
	return -1
}

func (a *App) updateLayout() {
	// Title bar (1) and help bar (1), plus pane borders.
	contentHeight := max(10, a.height-4)
	a.contentTop = 1

	a.helpOverlay.SetSize(a.width, a.height)
	a.helpBar.Width = a.width
	a.focusView.SetSize(a.width, a.height)

	totalWidth := a.width - 4
	threshold := a.config.NarrowLayoutThreshold
	if threshold <= 0 {
		threshold = 80
	}

	if a.width < threshold {
		a.layoutMode = LayoutNarrow
		narrowHeight := max(8, contentHeight-1)
		paneWidth := max(20, totalWidth)

		a.taskPane.SetSize(paneWidth, narrowHeight)
		a.timerPane.SetSize(paneWidth, narrowHeight)

		a.tasksPaneStart, a.tasksPaneEnd = 0, a.width
		a.timerPaneStart, a.timerPaneEnd = 0, a.width
		// Tab bar sits between the title and the pane.
		a.contentTop = 2
		return
	}

	a.layoutMode = LayoutWide
	var tasksWidth, timerWidth int
	if totalWidth < 120 {
		tasksWidth = (totalWidth * 58) / 100
	} else {
		tasksWidth = min((totalWidth*60)/100, 90)
	}
	timerWidth = min(totalWidth-tasksWidth-2, 50)

	a.taskPane.SetSize(tasksWidth, contentHeight)
	a.timerPane.SetSize(timerWidth, contentHeight)

	// Panes are separated by a single space and bordered on each side.
	a.tasksPaneStart = 0
	a.tasksPaneEnd = tasksWidth + 2
	a.timerPaneStart = a.tasksPaneEnd + 1
	a.timerPaneEnd = a.timerPaneStart + timerWidth + 2
}

func (a *App) View() string {
	if a.quitting {
		return a.renderGoodbye()
	}
	if a.settings != nil {
		return a.renderSettings()
	}
	if a.confirmDel != nil {
		return a.renderConfirmDelete()
	}
	if a.showHelp {
		return a.helpOverlay.View()
	}
	if a.focusMode {
		return a.focusView.View()
	}

	var b strings.Builder
	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")
	if a.layoutMode == LayoutNarrow {
		b.WriteString(a.renderPaneTabs())
		b.WriteString("\n")
		if a.activePane == PaneTasks {
			b.WriteString(a.taskPane.View())
		} else {
			b.WriteString(a.timerPane.View())
		}
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, a.taskPane.View(), " ", a.timerPane.View()))
	}
	b.WriteString("\n")
	b.WriteString(a.renderHelpBar())
	return b.String()
}

func (a *App) overlayWidth() int {
	if a.width > 0 {
		return min(60, max(20, a.width-4))
	}
	return 60
}

func (a *App) renderSettings() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(a.styles.ColorPrimary).
		Render("Timer settings")
	hint := a.styles.RenderHelp("enter", "next/save", "ctrl+t", "test sound", "esc", "cancel")

	content := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.styles.ColorPrimary).
		Padding(1, 2).
		Width(a.overlayWidth()).
		Render(title + "\n\n" + a.settings.View() + "\n" + hint)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}

func (a *App) renderConfirmDelete() string {
	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.styles.ColorDanger).
		Padding(1, 2).
		Width(a.overlayWidth())

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(a.styles.ColorDanger).
		MarginBottom(1)

	bodyStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorText)

	hintStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.confirmDel.title))
	b.WriteString("\n\n")
	b.WriteString(bodyStyle.Render(a.confirmDel.body))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("[y/enter] delete    [n/esc] cancel"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlayStyle.Render(b.String()))
}

func (a *App) renderPaneTabs() string {
	tabs := []struct {
		id    PaneID
		label string
	}{
		{PaneTasks, "Tasks"},
		{PaneTimer, "Timer"},
	}

	activeTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorPrimary).
		Bold(true)
	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	var parts []string
	for _, tab := range tabs {
		if tab.id == a.activePane {
			parts = append(parts, activeTabStyle.Render("["+tab.label+"]"))
		} else {
			parts = append(parts, inactiveTabStyle.Render(" "+tab.label+" "))
		}
	}

	tabBar := strings.Join(parts, "  ")
	if padding := (a.width - lipgloss.Width(tabBar)) / 2; padding > 0 {
		tabBar = strings.Repeat(" ", padding) + tabBar
	}
	return tabBar
}

func (a *App) renderGoodbye() string {
	st := a.widget.Timer()
	done, pending := a.widget.Counts()

	var b strings.Builder
	b.WriteString("\n  See you later!\n\n")
	if st.SessionsCompleted > 0 || done+pending > 0 {
		b.WriteString(fmt.Sprintf("     Sessions: %d\n", st.SessionsCompleted))
		if total := done + pending; total > 0 {
			b.WriteString(fmt.Sprintf("     Tasks:    %d/%d (%d%%)\n", done, total, done*100/total))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// headerStatus is the short summary next to the title.
func headerStatus(st timer.State) string {
	if st.SessionsCompleted > 0 {
		return fmt.Sprintf("%d done", st.SessionsCompleted)
	}
	return "Ready"
}

func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" pomodoro ")
	st := a.timerPane.State()
	stats := a.styles.StatLabelStyle.Render(headerStatus(st))

	var timerStatus string
	if st.Status != timer.StatusIdle {
		icon := "▶"
		if st.Status == timer.StatusPaused {
			icon = "⏸"
		}
		timerStatus = a.styles.PhaseStyle(st.Phase, st.Status).
			Render(fmt.Sprintf("%s %s %s", icon, st.Phase.Label(), FormatClock(st.SecondsLeft)))
	}

	used := lipgloss.Width(title) + lipgloss.Width(stats) + lipgloss.Width(timerStatus) + 2
	spacer := max(2, a.width-used)
	return title + "  " + stats + strings.Repeat(" ", spacer) + timerStatus
}

func (a *App) renderHelpBar() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.ErrorStyle.Render(a.status)
		}
		return a.styles.StatusStyle.Render(a.status)
	}

	if a.taskPane.IsEditing() {
		return a.styles.RenderHelp("enter", "save", "esc", "cancel")
	}

	keys := paneHelp{global: a.keys, pane: a.timerPane.keys}
	if a.activePane == PaneTasks {
		keys.pane = a.taskPane.keys
	}
	return a.helpBar.View(keys)
}

// paneHelp combines the focused pane's keys with the global ones for the
// help bar.
type paneHelp struct {
	global GlobalKeyMap
	pane   help.KeyMap
}

func (h paneHelp) ShortHelp() []key.Binding {
	return append(h.pane.ShortHelp(), h.global.Focus, h.global.Settings, h.global.NextPane, h.global.Help)
}

func (h paneHelp) FullHelp() [][]key.Binding {
	return append(h.pane.FullHelp(), []key.Binding{h.global.Focus, h.global.Settings, h.global.NextPane, h.global.Help, h.global.Quit})
}

// phaseChangeStatus announces a phase switch in the status line. It stands
// in for the terminal bell, which cannot be rung while the program owns the
// screen.
func phaseChangeStatus(from, to timer.Phase) string {
	return fmt.Sprintf("%s finished. Next: %s", from.Label(), to.Label())
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = time.Now().Add(ttl)
}

// Run starts the Bubble Tea program on w. It returns when the user quits.
func Run(w *widget.Widget, styles *Styles, cfg *AppConfig, previewer Previewer) error {
	app := NewApp(w, styles, cfg, previewer)
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if app.config.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	_, err := tea.NewProgram(app, opts...).Run()
	return err
}
