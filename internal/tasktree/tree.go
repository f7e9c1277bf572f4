package tasktree

import (
	"slices"
	"strings"
	"sync"
)

// Node is one row of the render walk.
type Node struct {
	Task        Task
	Depth       int
	HasChildren bool
}

// Tree is the ordered task sequence. The order of the sequence is both the
// sibling order and the order of top-level tasks. Every method is atomic.
type Tree struct {
	mu    sync.Mutex
	tasks []Task
	ids   *IDGen
}

// New builds a tree from previously stored tasks. The input is normalized
// first (see Normalize) and the id generator is seeded past the loaded ids.
// A nil generator gets a default one.
func New(tasks []Task, ids *IDGen) *Tree {
	if ids == nil {
		ids = NewIDGen(nil)
	}
	clean, _ := Normalize(tasks)
	existing := make([]string, len(clean))
	for i, t := range clean {
		existing[i] = t.ID
	}
	ids.Seed(existing)
	return &Tree{tasks: clean, ids: ids}
}

// Tasks returns a copy of the sequence.
func (t *Tree) Tasks() []Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneAll(t.tasks)
}

// Len returns the number of tasks.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tasks)
}

// Get looks up a task by id.
func (t *Tree) Get(id string) (Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := indexOf(t.tasks, id)
	if i < 0 {
		return Task{}, false
	}
	return t.tasks[i].Clone(), true
}

// Counts returns the number of done and pending tasks.
func (t *Tree) Counts() (done, pending int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, task := range t.tasks {
		if task.Done {
			done++
		} else {
			pending++
		}
	}
	return done, pending
}

// Add appends a new task. Text is trimmed and must not be empty. A non-nil
// parentID must name an existing task.
func (t *Tree) Add(text string, parentID *string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, &ValidationError{Field: "text", Reason: "must not be empty"}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	task := Task{Text: text}
	if parentID != nil {
		if indexOf(t.tasks, *parentID) < 0 {
			return Task{}, &ValidationError{Field: "parent", Reason: "no task with id " + *parentID}
		}
		task.ParentID = ptr(*parentID)
	}
	task.ID = t.ids.Next()
	for indexOf(t.tasks, task.ID) >= 0 {
		task.ID = t.ids.Next()
	}

	t.tasks = append(t.tasks, task)
	return task.Clone(), nil
}

// Toggle flips the done flag of id and returns the updated task. ok is false
// when id is unknown.
func (t *Tree) Toggle(id string) (task Task, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := indexOf(t.tasks, id)
	if i < 0 {
		return Task{}, false
	}
	t.tasks[i].Done = !t.tasks[i].Done
	return t.tasks[i].Clone(), true
}

// SetText replaces the text of id. Empty text is rejected; unknown ids are
// ignored.
func (t *Tree) SetText(id, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	i := indexOf(t.tasks, id)
	if i < 0 {
		return false, nil
	}
	t.tasks[i].Text = text
	return true, nil
}

// Delete removes id together with all of its descendants and returns the
// removed ids in sequence order. Unknown ids remove nothing.
func (t *Tree) Delete(id string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if indexOf(t.tasks, id) < 0 {
		return nil
	}

	doomed := descendants(t.tasks, id)
	doomed[id] = struct{}{}

	var removed []string
	kept := make([]Task, 0, len(t.tasks)-len(doomed))
	for _, task := range t.tasks {
		if _, ok := doomed[task.ID]; ok {
			removed = append(removed, task.ID)
			continue
		}
		kept = append(kept, task)
	}
	t.tasks = kept
	return removed
}

// Reorder moves dragged relative to target. A nil target detaches dragged to
// the top level at the end of the sequence. Above and below make dragged a
// sibling of target placed right before or after it; inside makes it the
// first child of target.
//
// The move is refused, leaving the sequence untouched, when either id is
// unknown, when dragged == target, or when target is a descendant of
// dragged. It reports whether the sequence changed.
func (t *Tree) Reorder(dragged string, target *string, pos Position) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	di := indexOf(t.tasks, dragged)
	if di < 0 {
		return false
	}
	moved := t.tasks[di].Clone()

	if target == nil {
		moved.ParentID = nil
		next := slices.Delete(cloneAll(t.tasks), di, di+1)
		t.tasks = append(next, moved)
		return true
	}

	if *target == dragged {
		return false
	}
	ti := indexOf(t.tasks, *target)
	if ti < 0 {
		return false
	}
	if isDescendant(t.tasks, dragged, *target) {
		return false
	}

	switch pos {
	case PositionAbove, PositionBelow:
		moved.ParentID = nil
		if p := t.tasks[ti].ParentID; p != nil {
			moved.ParentID = ptr(*p)
		}
	case PositionInside:
		moved.ParentID = ptr(*target)
	default:
		return false
	}

	next := slices.Delete(cloneAll(t.tasks), di, di+1)
	at := indexOf(next, *target)
	if pos != PositionAbove {
		at++
	}
	t.tasks = slices.Insert(next, at, moved)
	return true
}

// IsDescendant reports whether id sits somewhere below ancestor.
func (t *Tree) IsDescendant(ancestor, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return isDescendant(t.tasks, ancestor, id)
}

// Descendants returns every task below id in sequence order.
func (t *Tree) Descendants(id string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := descendants(t.tasks, id)
	var out []string
	for _, task := range t.tasks {
		if _, ok := set[task.ID]; ok {
			out = append(out, task.ID)
		}
	}
	return out
}

// Walk returns the display order: a depth-first walk of the top-level tasks
// in sequence order, each followed by its children in sequence order.
func (t *Tree) Walk() []Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return walk(t.tasks)
}

func walk(tasks []Task) []Node {
	children := make(map[string][]int)
	var roots []int
	for i, task := range tasks {
		if task.ParentID == nil {
			roots = append(roots, i)
			continue
		}
		children[*task.ParentID] = append(children[*task.ParentID], i)
	}

	out := make([]Node, 0, len(tasks))
	visited := make(map[string]bool, len(tasks))
	var visit func(i, depth int)
	visit = func(i, depth int) {
		task := tasks[i]
		if visited[task.ID] {
			return
		}
		visited[task.ID] = true
		kids := children[task.ID]
		out = append(out, Node{Task: task.Clone(), Depth: depth, HasChildren: len(kids) > 0})
		for _, k := range kids {
			visit(k, depth+1)
		}
	}
	for _, r := range roots {
		visit(r, 0)
	}
	return out
}

// descendants collects the transitive children of id.
func descendants(tasks []Task, id string) map[string]struct{} {
	children := make(map[string][]string)
	for _, task := range tasks {
		if task.ParentID != nil {
			children[*task.ParentID] = append(children[*task.ParentID], task.ID)
		}
	}

	out := make(map[string]struct{})
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if _, seen := out[c]; seen || c == id {
				continue
			}
			out[c] = struct{}{}
			queue = append(queue, c)
		}
	}
	return out
}

// isDescendant follows parent links upwards from id.
func isDescendant(tasks []Task, ancestor, id string) bool {
	parents := make(map[string]*string, len(tasks))
	for _, task := range tasks {
		parents[task.ID] = task.ParentID
	}
	seen := map[string]bool{id: true}
	for p := parents[id]; p != nil; p = parents[*p] {
		if *p == ancestor {
			return true
		}
		if seen[*p] {
			return false
		}
		seen[*p] = true
	}
	return false
}

// Normalize repairs a stored sequence so that the tree invariants hold:
// empty and duplicate ids are dropped (first occurrence wins), parents that
// do not exist are cleared, and cycles are broken by detaching a member to
// the top level. It returns the repaired copy and the number of fixes.
func Normalize(tasks []Task) ([]Task, int) {
	fixes := 0
	out := make([]Task, 0, len(tasks))
	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if task.ID == "" || seen[task.ID] {
			fixes++
			continue
		}
		seen[task.ID] = true
		out = append(out, task.Clone())
	}

	for i := range out {
		if p := out[i].ParentID; p != nil && (!seen[*p] || *p == out[i].ID) {
			out[i].ParentID = nil
			fixes++
		}
	}

	parents := make(map[string]*string, len(out))
	for _, task := range out {
		parents[task.ID] = task.ParentID
	}
	for i := range out {
		id := out[i].ID
		chain := map[string]bool{id: true}
		for p := parents[id]; p != nil; p = parents[*p] {
			if chain[*p] {
				if *p == id {
					out[i].ParentID = nil
					parents[id] = nil
					fixes++
				}
				break
			}
			chain[*p] = true
		}
	}
	return out, fixes
}

func indexOf(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, task := range tasks {
		out[i] = task.Clone()
	}
	return out
}
