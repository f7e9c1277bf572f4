package ui

import (
	"pomodoro/internal/tasktree"
	"pomodoro/internal/timer"
)

// timerStateMsg carries a state published by the engine.
type timerStateMsg timer.State

// timerClosedMsg reports that the engine subscription ended.
type timerClosedMsg struct{}

// tasksChangedMsg is sent after any task command; panes re-read the tree.
type tasksChangedMsg struct {
	action string
	err    error
}

// activeChangedMsg is sent when the active task changes.
type activeChangedMsg struct {
	id string
}

// focusMsg is the result of entering focus mode.
type focusMsg struct {
	task tasktree.Task
	err  error
}

// settingsAppliedMsg reports a submitted settings form.
type settingsAppliedMsg struct {
	changed bool
	ignored []string
}

// previewMsg reports the end of a test sound.
type previewMsg struct {
	err error
}
