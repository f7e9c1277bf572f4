package ui

import (
	"fmt"
	"strings"

	"pomodoro/internal/config"
	"pomodoro/internal/tasktree"
	"pomodoro/internal/widget"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputAdd
	inputAddSubtask
	inputEdit
)

// Title (1) + separator (1).
const taskHeaderRows = 2

// dragState tracks a mouse drag in the tree pane.
type dragState struct {
	id      string
	fromRow int
	overRow int // -1 when over the empty area below the rows
	pos     tasktree.Position
	moved   bool
}

// TaskPane renders the task tree and edits it.
type TaskPane struct {
	widget   *widget.Widget
	nodes    []tasktree.Node
	activeID string
	cursor   int
	offset   int
	focused  bool
	width    int
	height   int
	mode     inputMode
	target   string // parent for inputAddSubtask, task for inputEdit
	input    textinput.Model
	drag     *dragState
	mouse    bool
	styles   *Styles

	keys      TaskKeyMap
	inputKeys InputKeyMap
}

func NewTaskPane(w *widget.Widget, styles *Styles, keyCfg *config.KeysConfig, mouse bool) *TaskPane {
	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = tasktree.MaxTextLen
	ti.Width = 40

	p := &TaskPane{
		widget:    w,
		focused:   true,
		input:     ti,
		mouse:     mouse,
		styles:    styles,
		keys:      NewTaskKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
	p.Refresh()
	return p
}

// Refresh re-reads the tree, keeping the cursor on the same task when it
// still exists.
func (p *TaskPane) Refresh() {
	selected, _ := p.Selected()
	p.nodes = p.widget.Walk()
	p.activeID = ""
	if t, ok := p.widget.ActiveTask(); ok {
		p.activeID = t.ID
	}
	if i := p.indexOf(selected.ID); i >= 0 {
		p.cursor = i
	}
	if p.cursor >= len(p.nodes) {
		p.cursor = max(0, len(p.nodes)-1)
	}
	p.scrollToCursor()
}

func (p *TaskPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(10, width-8)
	p.scrollToCursor()
}

func (p *TaskPane) SetFocused(focused bool) { p.focused = focused }

// IsEditing reports whether the text input has the keyboard.
func (p *TaskPane) IsEditing() bool { return p.mode != inputNone }

// Selected returns the task under the cursor.
func (p *TaskPane) Selected() (tasktree.Task, bool) {
	if p.cursor < 0 || p.cursor >= len(p.nodes) {
		return tasktree.Task{}, false
	}
	return p.nodes[p.cursor].Task, true
}

// Counts returns done and pending task totals.
func (p *TaskPane) Counts() (done, pending int) {
	for _, n := range p.nodes {
		if n.Task.Done {
			done++
		} else {
			pending++
		}
	}
	return done, pending
}

func (p *TaskPane) visibleRows() int {
	// Title, separator, blank, footer and input line.
	rows := p.height - 7
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (p *TaskPane) scrollToCursor() {
	rows := p.visibleRows()
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+rows {
		p.offset = p.cursor - rows + 1
	}
	if p.offset > max(0, len(p.nodes)-rows) {
		p.offset = max(0, len(p.nodes)-rows)
	}
}

func (p *TaskPane) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, n := range p.nodes {
		if n.Task.ID == id {
			return i
		}
	}
	return -1
}

func (p *TaskPane) startInput(mode inputMode, target, value string) tea.Cmd {
	p.mode = mode
	p.target = target
	p.input.SetValue(value)
	p.input.CursorEnd()
	p.input.Focus()
	return textinput.Blink
}

func (p *TaskPane) stopInput() {
	p.mode = inputNone
	p.target = ""
	p.input.Reset()
	p.input.Blur()
}

func (p *TaskPane) Update(msg tea.Msg) tea.Cmd {
	if p.mode != inputNone {
		return p.updateInput(msg)
	}
	if !p.focused {
		return nil
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return p.handleMouse(msg)

	case tea.KeyMsg:
		sel, hasSel := p.Selected()
		switch {
		case key.Matches(msg, p.keys.Down):
			if len(p.nodes) > 0 {
				p.cursor = min(p.cursor+1, len(p.nodes)-1)
			}
		case key.Matches(msg, p.keys.Up):
			p.cursor = max(p.cursor-1, 0)
		case key.Matches(msg, p.keys.Top):
			p.cursor = 0
		case key.Matches(msg, p.keys.Bottom):
			p.cursor = max(0, len(p.nodes)-1)

		case key.Matches(msg, p.keys.Add):
			return p.startInput(inputAdd, "", "")
		case key.Matches(msg, p.keys.AddSubtask):
			if hasSel {
				return p.startInput(inputAddSubtask, sel.ID, "")
			}
			return p.startInput(inputAdd, "", "")
		case key.Matches(msg, p.keys.Edit):
			if hasSel {
				return p.startInput(inputEdit, sel.ID, sel.Text)
			}

		case key.Matches(msg, p.keys.Toggle):
			if hasSel {
				return toggleTaskCmd(p.widget, sel.ID)
			}
		case key.Matches(msg, p.keys.Delete):
			if hasSel {
				return deleteTaskCmd(p.widget, sel.ID)
			}
		case key.Matches(msg, p.keys.SetActive):
			if hasSel {
				return setActiveCmd(p.widget, sel.ID)
			}

		case key.Matches(msg, p.keys.MoveUp):
			return p.moveCmd(moveUp)
		case key.Matches(msg, p.keys.MoveDown):
			return p.moveCmd(moveDown)
		case key.Matches(msg, p.keys.Indent):
			return p.moveCmd(indent)
		case key.Matches(msg, p.keys.Outdent):
			return p.moveCmd(outdent)
		}
		p.scrollToCursor()
	}
	return nil
}

func (p *TaskPane) updateInput(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, p.inputKeys.Confirm):
			text := strings.TrimSpace(p.input.Value())
			mode, target := p.mode, p.target
			p.stopInput()
			if text == "" {
				return nil
			}
			switch mode {
			case inputAddSubtask:
				return addTaskCmd(p.widget, text, &target)
			case inputEdit:
				return renameTaskCmd(p.widget, target, text)
			default:
				return addTaskCmd(p.widget, text, nil)
			}
		case key.Matches(msg, p.inputKeys.Cancel):
			p.stopInput()
			return nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// A move computes the Reorder arguments for the selected node.
type move func(nodes []tasktree.Node, i int) (target *string, pos tasktree.Position, ok bool)

func (p *TaskPane) moveCmd(m move) tea.Cmd {
	sel, ok := p.Selected()
	if !ok {
		return nil
	}
	target, pos, ok := m(p.nodes, p.cursor)
	if !ok {
		return nil
	}
	return reorderCmd(p.widget, sel.ID, target, pos)
}

func moveUp(nodes []tasktree.Node, i int) (*string, tasktree.Position, bool) {
	j := prevSibling(nodes, i)
	if j < 0 {
		return nil, "", false
	}
	return &nodes[j].Task.ID, tasktree.PositionAbove, true
}

func moveDown(nodes []tasktree.Node, i int) (*string, tasktree.Position, bool) {
	j := nextSibling(nodes, i)
	if j < 0 {
		return nil, "", false
	}
	return &nodes[j].Task.ID, tasktree.PositionBelow, true
}

// indent makes the node the last child of its previous sibling.
func indent(nodes []tasktree.Node, i int) (*string, tasktree.Position, bool) {
	j := prevSibling(nodes, i)
	if j < 0 {
		return nil, "", false
	}
	if k := lastChild(nodes, j); k >= 0 {
		return &nodes[k].Task.ID, tasktree.PositionBelow, true
	}
	return &nodes[j].Task.ID, tasktree.PositionInside, true
}

// outdent moves the node right after its parent, one level up.
func outdent(nodes []tasktree.Node, i int) (*string, tasktree.Position, bool) {
	parent := nodes[i].Task.ParentID
	if parent == nil {
		return nil, "", false
	}
	id := *parent
	return &id, tasktree.PositionBelow, true
}

// prevSibling returns the walk index of the sibling rendered before i.
func prevSibling(nodes []tasktree.Node, i int) int {
	d := nodes[i].Depth
	for j := i - 1; j >= 0; j-- {
		switch {
		case nodes[j].Depth < d:
			return -1
		case nodes[j].Depth == d:
			return j
		}
	}
	return -1
}

// nextSibling returns the walk index of the sibling rendered after i.
func nextSibling(nodes []tasktree.Node, i int) int {
	d := nodes[i].Depth
	for j := i + 1; j < len(nodes); j++ {
		switch {
		case nodes[j].Depth < d:
			return -1
		case nodes[j].Depth == d:
			return j
		}
	}
	return -1
}

// lastChild returns the walk index of the last direct child of i.
func lastChild(nodes []tasktree.Node, i int) int {
	d := nodes[i].Depth
	last := -1
	for j := i + 1; j < len(nodes) && nodes[j].Depth > d; j++ {
		if nodes[j].Depth == d+1 {
			last = j
		}
	}
	return last
}

// rowAt maps a pane-local y to a walk index; -1 for the empty area below
// the rows and -2 outside the list.
func (p *TaskPane) rowAt(y int) int {
	row := y - taskHeaderRows
	if row < 0 || row >= p.visibleRows() {
		return -2
	}
	i := p.offset + row
	if i >= len(p.nodes) {
		return -1
	}
	return i
}

// textColumn is where a node's text starts: lead, indent, marker and
// checkbox.
func textColumn(n tasktree.Node) int {
	return 1 + 2*n.Depth + 2 + 4
}

// dropPosition decides where a drop on row over lands. Releasing on the
// text nests the task; releasing left of it places it before or after the
// row depending on the drag direction.
func dropPosition(n tasktree.Node, x, fromRow, overRow int) tasktree.Position {
	if x >= textColumn(n) {
		return tasktree.PositionInside
	}
	if overRow < fromRow {
		return tasktree.PositionAbove
	}
	return tasktree.PositionBelow
}

func (p *TaskPane) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		p.cursor = max(p.cursor-1, 0)
		p.scrollToCursor()
		return nil
	case tea.MouseButtonWheelDown:
		if len(p.nodes) > 0 {
			p.cursor = min(p.cursor+1, len(p.nodes)-1)
		}
		p.scrollToCursor()
		return nil
	}

	row := p.rowAt(msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || row < 0 {
			return nil
		}
		p.cursor = row
		n := p.nodes[row]
		if msg.X >= textColumn(n)-4 && msg.X < textColumn(n)-1 {
			return toggleTaskCmd(p.widget, n.Task.ID)
		}
		if p.mouse {
			p.drag = &dragState{id: n.Task.ID, fromRow: row, overRow: row}
		}

	case tea.MouseActionMotion:
		if p.drag == nil || row == -2 {
			return nil
		}
		p.drag.overRow = row
		p.drag.moved = p.drag.moved || row != p.drag.fromRow
		if row >= 0 {
			p.drag.pos = dropPosition(p.nodes[row], msg.X, p.drag.fromRow, row)
		}

	case tea.MouseActionRelease:
		d := p.drag
		p.drag = nil
		if d == nil || row == -2 {
			return nil
		}
		if row == -1 {
			return reorderCmd(p.widget, d.id, nil, "")
		}
		if row == d.fromRow {
			return nil
		}
		target := p.nodes[row].Task.ID
		return reorderCmd(p.widget, d.id, &target, dropPosition(p.nodes[row], msg.X, d.fromRow, row))
	}
	return nil
}

func (p *TaskPane) View() string {
	var b strings.Builder
	inner := max(10, p.width-4)

	b.WriteString(p.styles.PaneTitleStyle.Render("TASKS"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorMuted).Render(strings.Repeat("─", inner)))
	b.WriteString("\n")

	if len(p.nodes) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorTextMuted).Italic(true).
			Render("  No tasks yet. Press 'a' to add one."))
		b.WriteString("\n")
	} else {
		rows := p.visibleRows()
		end := min(len(p.nodes), p.offset+rows)
		for i := p.offset; i < end; i++ {
			b.WriteString(p.renderRow(i, inner))
			b.WriteString("\n")
		}
		if p.drag != nil && p.drag.moved && p.drag.overRow == -1 {
			b.WriteString(p.styles.TaskDropStyle.Render("  ↳ move to top level"))
			b.WriteString("\n")
		}
		_, pending := p.Counts()
		b.WriteString("\n")
		b.WriteString("  " + p.styles.StatLabelStyle.Render(fmt.Sprintf("%d remaining", pending)))
		b.WriteString("\n")
	}

	if p.mode != inputNone {
		prompt := "+ "
		switch p.mode {
		case inputAddSubtask:
			prompt = "↳ "
		case inputEdit:
			prompt = "✎ "
		}
		b.WriteString("\n")
		b.WriteString(p.styles.InputPromptStyle.Render(prompt) + p.input.View())
		b.WriteString("\n")
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}

func (p *TaskPane) renderRow(i, width int) string {
	n := p.nodes[i]
	marker := " "
	if n.Task.ID == p.activeID {
		marker = p.styles.ActiveMarker
	}
	checkbox := p.styles.TaskCheckboxPending
	if n.Task.Done {
		checkbox = p.styles.TaskCheckboxDone
	}
	indentStr := strings.Repeat("  ", n.Depth)

	avail := max(5, width-textColumn(n)-1)
	text := runewidth.Truncate(n.Task.Text, avail, "…")

	dropping := p.drag != nil && p.drag.moved && p.drag.overRow == i
	switch {
	case dropping:
		hint := map[tasktree.Position]string{
			tasktree.PositionAbove:  "↑ ",
			tasktree.PositionBelow:  "↓ ",
			tasktree.PositionInside: "→ ",
		}[p.drag.pos]
		return p.styles.TaskDropStyle.Render(" " + indentStr + hint + checkbox + " " + text)
	case i == p.cursor && p.focused && p.mode == inputNone:
		return p.styles.TaskSelectedStyle.Render(" " + indentStr + marker + " " + checkbox + " " + text + " ")
	}

	styled := p.styles.TaskPendingStyle.Render(text)
	if n.Task.Done {
		styled = p.styles.TaskDoneStyle.Render(text)
	} else if n.Task.ID == p.activeID {
		styled = p.styles.TaskActiveStyle.Render(text)
	}
	return " " + indentStr + marker + " " + checkbox + " " + styled
}
