// Package ui is the Bubble Tea front end: a timer pane, a task tree pane,
// a settings form and a distraction-free focus view.
package ui

import (
	"strings"

	"pomodoro/internal/config"

	"github.com/charmbracelet/bubbles/key"
)

// parseKeys splits a comma-separated binding list, falling back to the
// defaults when it is empty. "space" names the space bar.
func parseKeys(customKeys string, defaultKeys ...string) []string {
	if customKeys == "" {
		return defaultKeys
	}
	keys := strings.Split(customKeys, ",")
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		trimmed := strings.TrimSpace(k)
		if trimmed == "space" {
			trimmed = " "
		}
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultKeys
	}
	return result
}

// GlobalKeyMap holds keys available everywhere outside of text input.
type GlobalKeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	NextPane key.Binding
	Settings key.Binding
	Focus    key.Binding
}

func NewGlobalKeyMap(cfg *config.KeysConfig) GlobalKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return GlobalKeyMap{
		Quit: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Quit, "q", "ctrl+c")...),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Help, "?")...),
			key.WithHelp("?", "help"),
		),
		NextPane: key.NewBinding(
			key.WithKeys(parseKeys(cfg.NextPane, "tab")...),
			key.WithHelp("tab", "pane"),
		),
		Settings: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Settings, ",")...),
			key.WithHelp(",", "settings"),
		),
		Focus: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Focus, "f")...),
			key.WithHelp("f", "focus"),
		),
	}
}

// NavigationKeyMap moves the cursor in list panes.
type NavigationKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

func NewNavigationKeyMap(cfg *config.KeysConfig) NavigationKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return NavigationKeyMap{
		Up: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Up, "k", "up")...),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Down, "j", "down")...),
			key.WithHelp("j/↓", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Top, "g")...),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Bottom, "G")...),
			key.WithHelp("G", "bottom"),
		),
	}
}

// InputKeyMap confirms or cancels text input.
type InputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func NewInputKeyMap(cfg *config.KeysConfig) InputKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return InputKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Confirm, "enter")...),
			key.WithHelp("enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Cancel, "esc")...),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// TaskKeyMap holds the task tree pane keys.
type TaskKeyMap struct {
	Add        key.Binding
	AddSubtask key.Binding
	Edit       key.Binding
	Toggle     key.Binding
	Delete     key.Binding
	SetActive  key.Binding
	MoveUp     key.Binding
	MoveDown   key.Binding
	Indent     key.Binding
	Outdent    key.Binding
	NavigationKeyMap
}

func NewTaskKeyMap(cfg *config.KeysConfig) TaskKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return TaskKeyMap{
		Add: key.NewBinding(
			key.WithKeys(parseKeys(cfg.AddTask, "a")...),
			key.WithHelp("a", "add"),
		),
		AddSubtask: key.NewBinding(
			key.WithKeys(parseKeys(cfg.AddSubtask, "A")...),
			key.WithHelp("A", "subtask"),
		),
		Edit: key.NewBinding(
			key.WithKeys(parseKeys(cfg.EditTask, "e")...),
			key.WithHelp("e", "edit"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(parseKeys(cfg.ToggleTask, "d", "enter")...),
			key.WithHelp("d", "done"),
		),
		Delete: key.NewBinding(
			key.WithKeys(parseKeys(cfg.DeleteTask, "x")...),
			key.WithHelp("x", "delete"),
		),
		SetActive: key.NewBinding(
			key.WithKeys(parseKeys(cfg.SetActive, ".")...),
			key.WithHelp(".", "active"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys(parseKeys(cfg.MoveUp, "K")...),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys(parseKeys(cfg.MoveDown, "J")...),
			key.WithHelp("J", "move down"),
		),
		Indent: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Indent, ">")...),
			key.WithHelp(">", "indent"),
		),
		Outdent: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Outdent, "<")...),
			key.WithHelp("<", "outdent"),
		),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp implements help.KeyMap.
func (k TaskKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.AddSubtask, k.Toggle, k.SetActive, k.Delete}
}

// FullHelp implements help.KeyMap.
func (k TaskKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.AddSubtask, k.Edit, k.Toggle, k.Delete, k.SetActive},
		{k.MoveUp, k.MoveDown, k.Indent, k.Outdent},
		{k.Up, k.Down, k.Top, k.Bottom},
	}
}

// TimerKeyMap holds the timer pane keys.
type TimerKeyMap struct {
	StartPause key.Binding
	Reset      key.Binding
	Skip       key.Binding
}

func NewTimerKeyMap(cfg *config.KeysConfig) TimerKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return TimerKeyMap{
		StartPause: key.NewBinding(
			key.WithKeys(parseKeys(cfg.StartPause, " ")...),
			key.WithHelp("space", "start/pause"),
		),
		Reset: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Reset, "r")...),
			key.WithHelp("r", "reset"),
		),
		Skip: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Skip, "s")...),
			key.WithHelp("s", "skip"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k TimerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.StartPause, k.Reset, k.Skip}
}

// FullHelp implements help.KeyMap.
func (k TimerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.StartPause, k.Reset, k.Skip}}
}

// HelpKeyMap closes the help overlay.
type HelpKeyMap struct {
	Close key.Binding
}

func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{
		Close: key.NewBinding(
			key.WithKeys("?", "esc", "q", "enter", " "),
			key.WithHelp("any key", "close"),
		),
	}
}
