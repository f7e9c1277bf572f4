// Package importer brings tasks in from other tools. Every source is parsed
// into an outline of Items, which Import then replays into the task tree.
package importer

import (
	"fmt"
	"io"

	"pomodoro/internal/tasktree"
)

// Item is one task to import. Depth is its nesting level in outline order:
// an item with depth n hangs under the nearest preceding item of depth n-1.
type Item struct {
	Text  string
	Done  bool
	Depth int
}

// Result summarises an import.
type Result struct {
	Imported  int
	Completed int
	Errors    []string
}

// Importer parses one export format.
type Importer interface {
	// Parse reads the export into outline order without touching any state.
	Parse(r io.Reader) ([]Item, error)
	Name() string
}

// Target receives imported tasks. *widget.Widget satisfies it.
type Target interface {
	Add(text string, parentID *string) (tasktree.Task, error)
	Toggle(id string) (tasktree.Task, bool)
}

// Get returns the importer for format, or nil.
func Get(format string) Importer {
	switch format {
	case "todoist":
		return &TodoistImporter{}
	case "taskwarrior":
		return &TaskwarriorImporter{}
	default:
		return nil
	}
}

// SupportedFormats lists the accepted formats.
func SupportedFormats() []string {
	return []string{"todoist", "taskwarrior"}
}

// Import adds items to dst, rebuilding the hierarchy from their depths.
// Depths that skip a level attach to the deepest open ancestor. A failed
// item is recorded and its children attach one level higher.
func Import(items []Item, dst Target) *Result {
	res := &Result{}
	var stack []string
	for _, it := range items {
		d := it.Depth
		if d < 0 {
			d = 0
		}
		if d > len(stack) {
			d = len(stack)
		}
		stack = stack[:d]

		var parent *string
		if d > 0 {
			p := stack[d-1]
			parent = &p
		}
		t, err := dst.Add(it.Text, parent)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", it.Text, err))
			continue
		}
		res.Imported++
		stack = append(stack, t.ID)

		if it.Done {
			if _, ok := dst.Toggle(t.ID); ok {
				res.Completed++
			}
		}
	}
	return res
}
