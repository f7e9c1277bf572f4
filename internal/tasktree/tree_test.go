package tasktree

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedIDs() *IDGen {
	return NewIDGen(func() time.Time { return time.UnixMilli(1700000000000) })
}

func task(id, parent string) Task {
	t := Task{ID: id, Text: id}
	if parent != "" {
		t.ParentID = ptr(parent)
	}
	return t
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func walkIDs(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Task.ID
	}
	return out
}

func parentOf(t *testing.T, tree *Tree, id string) string {
	t.Helper()
	task, ok := tree.Get(id)
	require.True(t, ok, "task %s missing", id)
	return task.Parent()
}

func TestAdd(t *testing.T) {
	tree := New(nil, fixedIDs())

	a, err := tree.Add("  Write report  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Write report", a.Text)
	assert.Equal(t, "task-1-1700000000000", a.ID)
	assert.Nil(t, a.ParentID)
	assert.False(t, a.Done)

	b, err := tree.Add("Outline", &a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.Parent())
	assert.NotEqual(t, a.ID, b.ID)

	assert.Equal(t, []string{a.ID, b.ID}, ids(tree.Tasks()))
}

func TestAdd_RejectsEmptyText(t *testing.T) {
	tree := New(nil, nil)
	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := tree.Add(text, nil)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "text %q", text)
		assert.Equal(t, "text", verr.Field)
	}
	assert.Zero(t, tree.Len())
}

func TestAdd_RejectsUnknownParent(t *testing.T) {
	tree := New(nil, nil)
	_, err := tree.Add("orphan", ptr("nope"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "parent", verr.Field)
	assert.Zero(t, tree.Len())
}

func TestAdd_SeedsPastLoadedIDs(t *testing.T) {
	clock := func() time.Time { return time.UnixMilli(5) }
	tree := New([]Task{{ID: FormatID(1, time.UnixMilli(5)), Text: "x"}}, NewIDGen(clock))

	got, err := tree.Add("y", nil)
	require.NoError(t, err)
	assert.Equal(t, "task-2-5", got.ID)
}

func TestToggle(t *testing.T) {
	tree := New([]Task{task("a", "")}, nil)

	got, ok := tree.Toggle("a")
	require.True(t, ok)
	assert.True(t, got.Done)

	got, ok = tree.Toggle("a")
	require.True(t, ok)
	assert.False(t, got.Done)

	before := tree.Tasks()
	_, ok = tree.Toggle("missing")
	assert.False(t, ok)
	assert.Equal(t, before, tree.Tasks())
}

func TestSetText(t *testing.T) {
	tree := New([]Task{task("a", "")}, nil)

	ok, err := tree.SetText("a", " renamed ")
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ := tree.Get("a")
	assert.Equal(t, "renamed", got.Text)

	_, err = tree.SetText("a", " ")
	assert.Error(t, err)

	ok, err = tree.SetText("missing", "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete_RemovesWholeSubtree(t *testing.T) {
	// Parent with two children and one grandchild, in a scrambled order and
	// mixed with unrelated tasks.
	orders := [][]Task{
		{task("p", ""), task("c1", "p"), task("c2", "p"), task("g", "c1"), task("x", "")},
		{task("g", "c1"), task("x", ""), task("c2", "p"), task("p", ""), task("c1", "p")},
		{task("c1", "p"), task("y", "x"), task("g", "c1"), task("p", ""), task("x", ""), task("c2", "p")},
	}
	for i, seq := range orders {
		tree := New(seq, nil)
		removed := tree.Delete("p")
		assert.Len(t, removed, 4, "order %d", i)
		assert.ElementsMatch(t, []string{"p", "c1", "c2", "g"}, removed, "order %d", i)
		for _, rest := range tree.Tasks() {
			assert.NotContains(t, []string{"p", "c1", "c2", "g"}, rest.ID)
		}
	}
}

func TestDelete_Unknown(t *testing.T) {
	tree := New([]Task{task("a", "")}, nil)
	assert.Empty(t, tree.Delete("zzz"))
	assert.Equal(t, 1, tree.Len())
}

func TestDelete_Leaf(t *testing.T) {
	tree := New([]Task{task("a", ""), task("b", "a")}, nil)
	assert.Equal(t, []string{"b"}, tree.Delete("b"))
	assert.Equal(t, []string{"a"}, ids(tree.Tasks()))
}

func TestReorder(t *testing.T) {
	base := func() []Task {
		return []Task{
			task("a", ""),
			task("b", ""),
			task("b1", "b"),
			task("c", ""),
		}
	}

	tests := []struct {
		name       string
		dragged    string
		target     *string
		pos        Position
		wantOrder  []string
		wantParent string
		wantOK     bool
	}{
		{"above top-level", "c", ptr("a"), PositionAbove, []string{"c", "a", "b", "b1"}, "", true},
		{"below top-level", "a", ptr("c"), PositionBelow, []string{"b", "b1", "c", "a"}, "", true},
		{"above child becomes sibling", "a", ptr("b1"), PositionAbove, []string{"b", "a", "b1", "c"}, "b", true},
		{"below child becomes sibling", "c", ptr("b1"), PositionBelow, []string{"a", "b", "b1", "c"}, "b", true},
		{"inside", "c", ptr("a"), PositionInside, []string{"a", "c", "b", "b1"}, "a", true},
		{"inside goes first among children", "a", ptr("b"), PositionInside, []string{"b", "a", "b1", "c"}, "b", true},
		{"drop on background", "b1", nil, PositionInside, []string{"a", "b", "c", "b1"}, "", true},
		{"unknown dragged", "zz", ptr("a"), PositionAbove, []string{"a", "b", "b1", "c"}, "", false},
		{"unknown target", "a", ptr("zz"), PositionAbove, []string{"a", "b", "b1", "c"}, "", false},
		{"self inside", "b", ptr("b"), PositionInside, []string{"a", "b", "b1", "c"}, "", false},
		{"self above", "b", ptr("b"), PositionAbove, []string{"a", "b", "b1", "c"}, "", false},
		{"into own child", "b", ptr("b1"), PositionInside, []string{"a", "b", "b1", "c"}, "", false},
		{"beside own child", "b", ptr("b1"), PositionBelow, []string{"a", "b", "b1", "c"}, "", false},
		{"bad position", "a", ptr("c"), Position("sideways"), []string{"a", "b", "b1", "c"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := New(base(), nil)
			ok := tree.Reorder(tt.dragged, tt.target, tt.pos)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOrder, ids(tree.Tasks()))
			if tt.wantOK {
				assert.Equal(t, tt.wantParent, parentOf(t, tree, tt.dragged))
			}
		})
	}
}

func TestReorder_InsideDescendantLeavesBytesUnchanged(t *testing.T) {
	tree := New([]Task{
		task("a", ""),
		task("b", "a"),
		task("c", "b"),
		{ID: "d", Text: "done", Done: true},
	}, nil)
	before, err := json.Marshal(tree.Tasks())
	require.NoError(t, err)

	for _, target := range []string{"b", "c"} {
		assert.False(t, tree.Reorder("a", ptr(target), PositionInside))
		after, err := json.Marshal(tree.Tasks())
		require.NoError(t, err)
		assert.Equal(t, string(before), string(after))
	}
}

func TestReorder_SubtreeFollowsInWalk(t *testing.T) {
	tree := New([]Task{
		task("a", ""),
		task("b", ""),
		task("b1", "b"),
		task("b2", "b1"),
	}, nil)

	require.True(t, tree.Reorder("b", ptr("a"), PositionAbove))
	assert.Equal(t, []string{"b", "b1", "b2", "a"}, walkIDs(tree.Walk()))
}

func TestWalk(t *testing.T) {
	tree := New([]Task{
		task("c1", "p"),
		task("p", ""),
		task("q", ""),
		task("g", "c1"),
		task("c2", "p"),
	}, nil)

	nodes := tree.Walk()
	assert.Equal(t, []string{"p", "c1", "g", "c2", "q"}, walkIDs(nodes))

	depths := make([]int, len(nodes))
	for i, n := range nodes {
		depths[i] = n.Depth
	}
	assert.Equal(t, []int{0, 1, 2, 1, 0}, depths)
	assert.True(t, nodes[0].HasChildren)
	assert.False(t, nodes[4].HasChildren)
}

func TestDescendants(t *testing.T) {
	tree := New([]Task{task("a", ""), task("b", "a"), task("c", "b"), task("d", "")}, nil)
	assert.Equal(t, []string{"b", "c"}, tree.Descendants("a"))
	assert.True(t, tree.IsDescendant("a", "c"))
	assert.False(t, tree.IsDescendant("c", "a"))
	assert.False(t, tree.IsDescendant("a", "a"))
	assert.False(t, tree.IsDescendant("a", "d"))
}

func TestCounts(t *testing.T) {
	tree := New([]Task{task("a", ""), {ID: "b", Text: "b", Done: true}, task("c", "")}, nil)
	done, pending := tree.Counts()
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, pending)
}

func TestTasks_ReturnsCopy(t *testing.T) {
	tree := New([]Task{task("a", ""), task("b", "a")}, nil)
	snap := tree.Tasks()
	snap[1].Text = "mutated"
	*snap[1].ParentID = "zzz"

	got, _ := tree.Get("b")
	assert.Equal(t, "b", got.Text)
	assert.Equal(t, "a", got.Parent())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        []Task
		wantIDs   []string
		wantRoots []string
		wantFixes int
	}{
		{
			name:      "clean input",
			in:        []Task{task("a", ""), task("b", "a")},
			wantIDs:   []string{"a", "b"},
			wantRoots: []string{"a"},
		},
		{
			name:      "duplicates and empty ids",
			in:        []Task{task("a", ""), task("a", ""), task("", "")},
			wantIDs:   []string{"a"},
			wantRoots: []string{"a"},
			wantFixes: 2,
		},
		{
			name:      "dangling parent",
			in:        []Task{task("a", "ghost")},
			wantIDs:   []string{"a"},
			wantRoots: []string{"a"},
			wantFixes: 1,
		},
		{
			name:      "self parent",
			in:        []Task{task("a", "a")},
			wantIDs:   []string{"a"},
			wantRoots: []string{"a"},
			wantFixes: 1,
		},
		{
			name:      "two-cycle",
			in:        []Task{task("a", "b"), task("b", "a")},
			wantIDs:   []string{"a", "b"},
			wantRoots: []string{"a"},
			wantFixes: 1,
		},
		{
			name:      "cycle below a chain",
			in:        []Task{task("x", "a"), task("a", "b"), task("b", "c"), task("c", "a")},
			wantIDs:   []string{"x", "a", "b", "c"},
			wantRoots: []string{"a"},
			wantFixes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, fixes := Normalize(tt.in)
			assert.Equal(t, tt.wantIDs, ids(out))
			assert.Equal(t, tt.wantFixes, fixes)

			var roots []string
			for _, task := range out {
				if task.ParentID == nil {
					roots = append(roots, task.ID)
				}
			}
			assert.Equal(t, tt.wantRoots, roots)
			assert.Len(t, walk(out), len(out), "every task must be reachable")
		})
	}
}

func TestClampText(t *testing.T) {
	assert.Equal(t, "hi", ClampText("  hi  "))

	long := ""
	for i := 0; i < 150; i++ {
		long += "é"
	}
	assert.Equal(t, MaxTextLen, len([]rune(ClampText(long))))
}

func TestParsePosition(t *testing.T) {
	p, err := ParsePosition("Inside")
	require.NoError(t, err)
	assert.Equal(t, PositionInside, p)

	_, err = ParsePosition("left")
	assert.Error(t, err)
}
