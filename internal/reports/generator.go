package reports

import (
	"errors"
	"math"
	"time"

	"pomodoro/internal/logging"
	"pomodoro/internal/storage"
	"pomodoro/internal/tasktree"
)

// Generator builds reports from a store.
type Generator struct {
	store storage.Store
	now   func() time.Time
}

// NewGenerator creates a report generator.
func NewGenerator(store storage.Store) *Generator {
	return &Generator{store: store, now: time.Now}
}

// Generate reads the settings, tasks and active task id. Blobs that needed
// recovery are reported with their recovered values.
func (g *Generator) Generate() (*Report, error) {
	settings, err := storage.LoadSettings(g.store)
	if err := tolerate(err); err != nil {
		return nil, err
	}
	tasks, err := storage.LoadTasks(g.store)
	if err := tolerate(err); err != nil {
		return nil, err
	}
	active, err := storage.LoadActiveTaskID(g.store)
	if err := tolerate(err); err != nil {
		return nil, err
	}

	tree := tasktree.New(tasks, nil)
	report := &Report{
		GeneratedAt: g.now(),
		Settings: SettingsSummary{
			WorkSeconds:             settings.WorkDuration,
			BreakSeconds:            settings.BreakDuration,
			LongBreakSeconds:        settings.LongBreakDuration,
			SessionsBeforeLongBreak: settings.SessionsBeforeLongBreak,
			Sound:                   string(settings.NotificationSound),
			VolumePercent:           int(math.Round(settings.Volume * 100)),
		},
	}

	nodes := tree.Walk()
	entries := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		e := Entry{
			ID:       n.Task.ID,
			Text:     n.Task.Text,
			Done:     n.Task.Done,
			Depth:    n.Depth,
			ParentID: n.Task.Parent(),
		}
		if n.HasChildren {
			e.Subtasks = len(tree.Descendants(e.ID))
		}
		entries = append(entries, e)
		if e.ID == active {
			a := e
			report.ActiveTask = &a
		}
	}

	done, pending := tree.Counts()
	report.Tasks = TaskSummary{
		Total:          len(entries),
		CompletedCount: done,
		PendingCount:   pending,
		Tree:           entries,
	}
	if len(entries) > 0 {
		report.Tasks.CompletionRate = float64(done) / float64(len(entries)) * 100
	}
	return report, nil
}

func tolerate(err error) error {
	if errors.Is(err, storage.ErrRecovered) {
		logging.Logger.Warn("report uses recovered data", "detail", err)
		return nil
	}
	return err
}
