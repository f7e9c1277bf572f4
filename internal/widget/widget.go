// Package widget is the single process-scoped object the hosts talk to. It
// owns the timer engine, the task tree, the active task reference and the
// persistence of all three.
package widget

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"pomodoro/internal/logging"
	"pomodoro/internal/storage"
	"pomodoro/internal/tasktree"
	"pomodoro/internal/timer"
)

// ErrNoActiveTask is returned by EnterFocus when no task is active.
var ErrNoActiveTask = errors.New("no active task")

// Options wires a Widget. Store is required.
type Options struct {
	Store    storage.Store
	Notifier timer.Notifier
	// Clock drives the countdown; nil means the system clock.
	Clock timer.Clock
	// Now feeds the task id generator; nil means time.Now.
	Now func() time.Time
	// OnPhaseComplete runs after a phase finishes on its own.
	OnPhaseComplete func(timer.Phase)
}

// Widget is safe for concurrent use; each command is applied atomically.
type Widget struct {
	mu      sync.Mutex
	store   storage.Store
	engine  *timer.Engine
	tree    *tasktree.Tree
	active  string
	onPhase func(timer.Phase)
}

// New loads the persisted state and builds the widget. Missing or corrupt
// blobs fall back to defaults and are logged; only a nil store is an error.
func New(opts Options) (*Widget, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("widget: store is required")
	}

	settings, err := storage.LoadSettings(opts.Store)
	logLoad("settings", err)
	tasks, err := storage.LoadTasks(opts.Store)
	logLoad("tasks", err)
	active, err := storage.LoadActiveTaskID(opts.Store)
	logLoad("active task", err)

	w := &Widget{
		store:   opts.Store,
		tree:    tasktree.New(tasks, tasktree.NewIDGen(opts.Now)),
		onPhase: opts.OnPhaseComplete,
	}
	if _, ok := w.tree.Get(active); ok {
		w.active = active
	} else if active != "" {
		logging.Logger.Info("dropping stale active task", "id", active)
		w.saveActive()
	}

	engineOpts := []timer.Option{
		timer.WithPhaseCompleteHook(w.phaseComplete),
		timer.WithSettingsHook(w.saveSettings),
	}
	if opts.Clock != nil {
		engineOpts = append(engineOpts, timer.WithClock(opts.Clock))
	}
	if opts.Notifier != nil {
		engineOpts = append(engineOpts, timer.WithNotifier(opts.Notifier))
	}
	w.engine = timer.New(settings, engineOpts...)
	return w, nil
}

func logLoad(what string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrRecovered):
		logging.Logger.Warn("recovered persisted state", "blob", what, "detail", err)
	default:
		logging.Logger.Error("load persisted state", "blob", what, "error", err)
	}
}

// Timer commands.

func (w *Widget) Start() { w.engine.Start() }
func (w *Widget) Pause() { w.engine.Pause() }
func (w *Widget) Reset() { w.engine.Reset() }
func (w *Widget) Skip()  { w.engine.Skip() }

// StartPause starts a stopped timer or pauses a running one.
func (w *Widget) StartPause() {
	if w.engine.Snapshot().Status == timer.StatusRunning {
		w.engine.Pause()
		return
	}
	w.engine.Start()
}

// UpdateSettings applies the valid fields of patch and persists the result.
func (w *Widget) UpdateSettings(patch timer.SettingsPatch) bool {
	return w.engine.UpdateSettings(patch)
}

// Timer returns the current timer state.
func (w *Widget) Timer() timer.State { return w.engine.Snapshot() }

// Subscribe streams timer states; see timer.Engine.Subscribe.
func (w *Widget) Subscribe() <-chan timer.State { return w.engine.Subscribe() }

// Task commands.

// Add creates a task. The text is trimmed and cut to tasktree.MaxTextLen.
func (w *Widget) Add(text string, parentID *string) (tasktree.Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, err := w.tree.Add(tasktree.ClampText(text), parentID)
	if err != nil {
		return tasktree.Task{}, err
	}
	w.saveTasks()
	return t, nil
}

// Rename replaces a task's text.
func (w *Widget) Rename(id, text string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ok, err := w.tree.SetText(id, tasktree.ClampText(text))
	if ok {
		w.saveTasks()
	}
	return ok, err
}

// Toggle flips a task's done flag. Completing the active task clears it.
func (w *Widget) Toggle(id string) (tasktree.Task, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.tree.Toggle(id)
	if !ok {
		return t, false
	}
	w.saveTasks()
	if t.Done && w.active == id {
		w.setActiveLocked("")
	}
	return t, true
}

// Delete removes a task and its subtree. If the active task is among the
// removed ones it is cleared.
func (w *Widget) Delete(id string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	removed := w.tree.Delete(id)
	if len(removed) == 0 {
		return nil
	}
	w.saveTasks()
	for _, r := range removed {
		if r == w.active {
			w.setActiveLocked("")
			break
		}
	}
	return removed
}

// Reorder moves a task; see tasktree.Tree.Reorder.
func (w *Widget) Reorder(dragged string, target *string, pos tasktree.Position) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.tree.Reorder(dragged, target, pos) {
		return false
	}
	w.saveTasks()
	return true
}

// SetActive makes id the active task, or clears it when id already is.
// Unknown ids are ignored. It returns the active id afterwards.
func (w *Widget) SetActive(id string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.tree.Get(id); !ok {
		return w.active
	}
	if w.active == id {
		w.setActiveLocked("")
	} else {
		w.setActiveLocked(id)
	}
	return w.active
}

// ClearActive drops the active task reference.
func (w *Widget) ClearActive() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active != "" {
		w.setActiveLocked("")
	}
}

// EnterFocus checks that a task is active and starts an idle timer.
func (w *Widget) EnterFocus() (tasktree.Task, error) {
	t, ok := w.ActiveTask()
	if !ok {
		return tasktree.Task{}, ErrNoActiveTask
	}
	if w.engine.Snapshot().Status == timer.StatusIdle {
		w.engine.Start()
	}
	return t, nil
}

// Snapshots.

func (w *Widget) Tasks() []tasktree.Task { return w.tree.Tasks() }
func (w *Widget) Walk() []tasktree.Node  { return w.tree.Walk() }

// Counts returns how many tasks are done and pending.
func (w *Widget) Counts() (done, pending int) { return w.tree.Counts() }

// Descendants lists every task below id.
func (w *Widget) Descendants(id string) []string { return w.tree.Descendants(id) }

// Task looks up a task by id.
func (w *Widget) Task(id string) (tasktree.Task, bool) { return w.tree.Get(id) }

// ActiveTask returns the active task, if any.
func (w *Widget) ActiveTask() (tasktree.Task, bool) {
	w.mu.Lock()
	id := w.active
	w.mu.Unlock()
	if id == "" {
		return tasktree.Task{}, false
	}
	return w.tree.Get(id)
}

// Close stops the countdown and closes the store.
func (w *Widget) Close() error {
	w.engine.Close()
	return w.store.Close()
}

func (w *Widget) setActiveLocked(id string) {
	w.active = id
	w.saveActive()
}

func (w *Widget) phaseComplete(p timer.Phase) {
	logging.Logger.Info("phase complete", "phase", p)
	if w.onPhase != nil {
		w.onPhase(p)
	}
}

// Persistence is best effort: failures are logged and never surface to the
// caller.

func (w *Widget) saveTasks() {
	if err := storage.SaveTasks(w.store, w.tree.Tasks()); err != nil {
		logging.Logger.Warn("save tasks", "error", err)
	}
}

func (w *Widget) saveActive() {
	if err := storage.SaveActiveTaskID(w.store, w.active); err != nil {
		logging.Logger.Warn("save active task", "error", err)
	}
}

func (w *Widget) saveSettings(s timer.Settings) {
	if err := storage.SaveSettings(w.store, s); err != nil {
		logging.Logger.Warn("save settings", "error", err)
	}
}
