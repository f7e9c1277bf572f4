package ui

import (
	"context"
	"errors"
	"time"

	"pomodoro/internal/tasktree"
	"pomodoro/internal/timer"
	"pomodoro/internal/widget"

	tea "github.com/charmbracelet/bubbletea"
)

var errMoveRejected = errors.New("cannot move a task there")

// Previewer plays a test sound; notify.Sink implements it.
type Previewer interface {
	Preview(ctx context.Context, sound timer.Sound, volume float64) error
}

// waitForTimer blocks on the engine subscription and turns the next state
// into a message. The app re-issues it after every timerStateMsg.
func waitForTimer(ch <-chan timer.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return timerClosedMsg{}
		}
		return timerStateMsg(st)
	}
}

func addTaskCmd(w *widget.Widget, text string, parentID *string) tea.Cmd {
	return func() tea.Msg {
		_, err := w.Add(text, parentID)
		return tasksChangedMsg{action: "Added", err: err}
	}
}

func toggleTaskCmd(w *widget.Widget, id string) tea.Cmd {
	return func() tea.Msg {
		t, ok := w.Toggle(id)
		switch {
		case !ok:
			return tasksChangedMsg{}
		case t.Done:
			return tasksChangedMsg{action: "Completed"}
		default:
			return tasksChangedMsg{action: "Reopened"}
		}
	}
}

func deleteTaskCmd(w *widget.Widget, id string) tea.Cmd {
	return func() tea.Msg {
		if len(w.Delete(id)) == 0 {
			return tasksChangedMsg{}
		}
		return tasksChangedMsg{action: "Deleted"}
	}
}

func reorderCmd(w *widget.Widget, dragged string, target *string, pos tasktree.Position) tea.Cmd {
	return func() tea.Msg {
		if !w.Reorder(dragged, target, pos) {
			return tasksChangedMsg{err: errMoveRejected}
		}
		return tasksChangedMsg{action: "Moved"}
	}
}

func setActiveCmd(w *widget.Widget, id string) tea.Cmd {
	return func() tea.Msg {
		return activeChangedMsg{id: w.SetActive(id)}
	}
}

func enterFocusCmd(w *widget.Widget) tea.Cmd {
	return func() tea.Msg {
		t, err := w.EnterFocus()
		return focusMsg{task: t, err: err}
	}
}

func applySettingsCmd(w *widget.Widget, patch timer.SettingsPatch, ignored []string) tea.Cmd {
	return func() tea.Msg {
		changed := false
		if !patch.IsEmpty() {
			changed = w.UpdateSettings(patch)
		}
		return settingsAppliedMsg{changed: changed, ignored: ignored}
	}
}

func previewCmd(p Previewer, sound timer.Sound, volume float64) tea.Cmd {
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return previewMsg{err: p.Preview(ctx, sound, volume)}
	}
}

func renameTaskCmd(w *widget.Widget, id, text string) tea.Cmd {
	return func() tea.Msg {
		ok, err := w.Rename(id, text)
		if !ok && err == nil {
			return tasksChangedMsg{}
		}
		return tasksChangedMsg{action: "Renamed", err: err}
	}
}
