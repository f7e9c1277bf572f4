// Package tasktree keeps a flat, ordered list of tasks linked into a tree by
// parent ids. Descendant and ancestor relations are derived from the current
// links on every call and never cached.
package tasktree

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTextLen is the longest task text the UI and CLI accept, in characters.
const MaxTextLen = 100

// Task is a single to-do item. A nil ParentID means the task is top level.
type Task struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Done     bool    `json:"done"`
	ParentID *string `json:"parentId"`
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	if t.ParentID != nil {
		p := *t.ParentID
		t.ParentID = &p
	}
	return t
}

// Parent returns the parent id, or "" for a top-level task.
func (t Task) Parent() string {
	if t.ParentID == nil {
		return ""
	}
	return *t.ParentID
}

// ValidationError reports input the tree refuses to store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Position says where a dragged task lands relative to its drop target.
type Position string

const (
	PositionAbove  Position = "above"
	PositionBelow  Position = "below"
	PositionInside Position = "inside"
)

// ParsePosition parses "above", "below" or "inside".
func ParsePosition(raw string) (Position, error) {
	switch p := Position(strings.ToLower(strings.TrimSpace(raw))); p {
	case PositionAbove, PositionBelow, PositionInside:
		return p, nil
	}
	return "", &ValidationError{Field: "position", Reason: fmt.Sprintf("%q is not above, below or inside", raw)}
}

// ClampText trims s and cuts it to MaxTextLen characters.
func ClampText(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxTextLen {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:MaxTextLen]))
}

func ptr(s string) *string { return &s }
