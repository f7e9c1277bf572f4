package reports

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/internal/storage"
	"pomodoro/internal/tasktree"
	"pomodoro/internal/timer"
)

func strp(s string) *string { return &s }

func newGenerator(t *testing.T) (*Generator, *storage.FileStore) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	g := NewGenerator(store)
	g.now = func() time.Time { return time.Date(2025, 12, 15, 9, 30, 0, 0, time.UTC) }
	return g, store
}

func TestGenerate_Empty(t *testing.T) {
	g, _ := newGenerator(t)

	r, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, 25*60, r.Settings.WorkSeconds)
	assert.Equal(t, 80, r.Settings.VolumePercent)
	assert.Equal(t, 0, r.Tasks.Total)
	assert.Nil(t, r.ActiveTask)

	md := FormatMarkdown(r)
	assert.Contains(t, md, "## Tasks (0/0 done)")
	assert.Contains(t, md, "_No tasks._")
}

func TestGenerate_TreeOrderAndCounts(t *testing.T) {
	g, store := newGenerator(t)
	require.NoError(t, storage.SaveTasks(store, []tasktree.Task{
		{ID: "c", Text: "child", Done: true, ParentID: strp("a")},
		{ID: "a", Text: "parent"},
		{ID: "b", Text: "sibling *bold*"},
		{ID: "d", Text: "grandchild", ParentID: strp("c")},
	}))
	require.NoError(t, storage.SaveActiveTaskID(store, "b"))
	s := timer.DefaultSettings()
	s.WorkDuration = 50 * 60
	require.NoError(t, storage.SaveSettings(store, s))

	r, err := g.Generate()
	require.NoError(t, err)

	var ids []string
	var depths []int
	for _, e := range r.Tasks.Tree {
		ids = append(ids, e.ID)
		depths = append(depths, e.Depth)
	}
	assert.Equal(t, []string{"a", "c", "d", "b"}, ids)
	assert.Equal(t, []int{0, 1, 2, 0}, depths)
	assert.Equal(t, 2, r.Tasks.Tree[0].Subtasks)
	assert.Equal(t, 1, r.Tasks.CompletedCount)
	assert.Equal(t, 3, r.Tasks.PendingCount)
	assert.InDelta(t, 25.0, r.Tasks.CompletionRate, 0.001)
	require.NotNil(t, r.ActiveTask)
	assert.Equal(t, "b", r.ActiveTask.ID)
	assert.Equal(t, 50*60, r.Settings.WorkSeconds)

	md := FormatMarkdown(r)
	want := strings.Join([]string{
		"- [ ] parent",
		"  - [x] child",
		"    - [ ] grandchild",
		`- [ ] sibling \*bold\*`,
	}, "\n")
	assert.Contains(t, md, want)
	assert.Contains(t, md, `**Active:** sibling \*bold\*`)
	assert.Contains(t, md, "3 remaining, 25% complete")
	assert.Contains(t, md, "- Work: 50 min")
}

func TestGenerate_ToleratesRecoveredTasks(t *testing.T) {
	g, store := newGenerator(t)
	require.NoError(t, storage.SaveTasks(store, []tasktree.Task{
		{ID: "a", Text: "orphan", ParentID: strp("gone")},
	}))

	r, err := g.Generate()
	require.NoError(t, err)
	require.Len(t, r.Tasks.Tree, 1)
	assert.Equal(t, 0, r.Tasks.Tree[0].Depth)
	assert.Empty(t, r.Tasks.Tree[0].ParentID)
}

func TestFormatJSON(t *testing.T) {
	g, store := newGenerator(t)
	require.NoError(t, storage.SaveTasks(store, []tasktree.Task{{ID: "a", Text: "one"}}))

	r, err := g.Generate()
	require.NoError(t, err)
	data, err := FormatJSON(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	tasks := decoded["tasks"].(map[string]any)
	assert.EqualValues(t, 1, tasks["total"])
	_, hasActive := decoded["active_task"]
	assert.False(t, hasActive)
}
