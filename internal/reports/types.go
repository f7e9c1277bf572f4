// Package reports renders the task tree and timer settings as a Markdown or
// JSON export.
package reports

import "time"

// Report is a point-in-time export of the persisted state.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Settings    SettingsSummary `json:"settings"`
	Tasks       TaskSummary     `json:"tasks"`
	ActiveTask  *Entry          `json:"active_task,omitempty"`
}

// SettingsSummary is the timer configuration. Durations stay in seconds so
// that sub-minute values survive the export.
type SettingsSummary struct {
	WorkSeconds             int    `json:"work_seconds"`
	BreakSeconds            int    `json:"break_seconds"`
	LongBreakSeconds        int    `json:"long_break_seconds"`
	SessionsBeforeLongBreak int    `json:"sessions_before_long_break"`
	Sound                   string `json:"sound"`
	VolumePercent           int    `json:"volume_percent"`
}

// TaskSummary holds the tree in render order plus its counts.
type TaskSummary struct {
	Total          int     `json:"total"`
	CompletedCount int     `json:"completed_count"`
	PendingCount   int     `json:"pending_count"`
	CompletionRate float64 `json:"completion_rate"`
	Tree           []Entry `json:"tree"`
}

// Entry is one task with its depth in the tree.
type Entry struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Done     bool   `json:"done"`
	Depth    int    `json:"depth"`
	ParentID string `json:"parent_id,omitempty"`
	Subtasks int    `json:"subtasks,omitempty"`
}
