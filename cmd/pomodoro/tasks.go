package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"pomodoro/internal/tasktree"
	"pomodoro/internal/widget"
)

// TasksCmd manages the task tree from the shell.
type TasksCmd struct {
	List   TasksListCmd   `cmd:"" help:"Print the task tree" default:"1"`
	Add    TasksAddCmd    `cmd:"" help:"Add a task"`
	Done   TasksDoneCmd   `cmd:"" help:"Toggle a task between done and pending"`
	Rm     TasksRmCmd     `cmd:"" help:"Delete a task and its subtasks"`
	Move   TasksMoveCmd   `cmd:"" help:"Move a task relative to another"`
	Active TasksActiveCmd `cmd:"" help:"Show, set or clear the active task"`
}

// withWidget opens the widget without notifications, runs fn and closes it.
func withWidget(cli *CLI, fn func(w *widget.Widget) error) error {
	w, err := openWidget(cli.cfg, nil)
	if err != nil {
		return err
	}
	defer w.Close()
	return fn(w)
}

type TasksListCmd struct {
	Format string `help:"Output format: tree or json" enum:"tree,json" default:"tree" short:"f"`
}

func (c *TasksListCmd) Run(cli *CLI) error {
	return withWidget(cli, func(w *widget.Widget) error {
		if c.Format == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(w.Tasks())
		}
		active, _ := w.ActiveTask()
		printTree(os.Stdout, w.Walk(), active.ID)
		return nil
	})
}

// printTree writes one line per task: checkbox, id and indented text.
func printTree(out io.Writer, nodes []tasktree.Node, activeID string) {
	if len(nodes) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return
	}
	pending := 0
	for _, n := range nodes {
		box := "[ ]"
		if n.Task.Done {
			box = "[x]"
		} else {
			pending++
		}
		marker := " "
		if n.Task.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s %-28s %s%s\n", marker, box, n.Task.ID, strings.Repeat("  ", n.Depth), n.Task.Text)
	}
	fmt.Fprintf(out, "\n%d remaining\n", pending)
}

type TasksAddCmd struct {
	Text   []string `arg:"" help:"Task text"`
	Parent string   `help:"Add as a subtask of this task id" short:"p"`
}

func (c *TasksAddCmd) Run(cli *CLI) error {
	return withWidget(cli, func(w *widget.Widget) error {
		var parent *string
		if c.Parent != "" {
			parent = &c.Parent
		}
		t, err := w.Add(strings.Join(c.Text, " "), parent)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added %s\n", t.ID)
		return nil
	})
}

type TasksDoneCmd struct {
	ID string `arg:"" help:"Task id"`
}

func (c *TasksDoneCmd) Run(cli *CLI) error {
	return withWidget(cli, func(w *widget.Widget) error {
		t, ok := w.Toggle(c.ID)
		if !ok {
			return fmt.Errorf("no task %q", c.ID)
		}
		if t.Done {
			fmt.Printf("✓ Completed: %s\n", t.Text)
		} else {
			fmt.Printf("✓ Reopened: %s\n", t.Text)
		}
		return nil
	})
}

type TasksRmCmd struct {
	ID string `arg:"" help:"Task id"`
}

func (c *TasksRmCmd) Run(cli *CLI) error {
	return withWidget(cli, func(w *widget.Widget) error {
		removed := w.Delete(c.ID)
		if len(removed) == 0 {
			return fmt.Errorf("no task %q", c.ID)
		}
		fmt.Printf("✓ Deleted %d task(s)\n", len(removed))
		return nil
	})
}

type TasksMoveCmd struct {
	ID       string `arg:"" help:"Task to move"`
	Target   string `help:"Task to move relative to" short:"t" xor:"where"`
	Position string `help:"above, below or inside the target" default:"below" short:"P"`
	Top      bool   `help:"Move to the top level, after every other task" xor:"where"`
}

func (c *TasksMoveCmd) Run(cli *CLI) error {
	var (
		target *string
		pos    tasktree.Position
	)
	switch {
	case c.Top:
	case c.Target != "":
		p, err := tasktree.ParsePosition(c.Position)
		if err != nil {
			return err
		}
		target, pos = &c.Target, p
	default:
		return fmt.Errorf("either --target or --top is required")
	}
	return withWidget(cli, func(w *widget.Widget) error {
		if !w.Reorder(c.ID, target, pos) {
			return fmt.Errorf("cannot move %s there", c.ID)
		}
		fmt.Println("✓ Moved")
		return nil
	})
}

type TasksActiveCmd struct {
	ID    string `arg:"" optional:"" help:"Task to make active; the active task again clears it"`
	Clear bool   `help:"Clear the active task"`
}

func (c *TasksActiveCmd) Run(cli *CLI) error {
	return withWidget(cli, func(w *widget.Widget) error {
		switch {
		case c.Clear:
			w.ClearActive()
			fmt.Println("✓ No active task")
			return nil
		case c.ID != "":
			if _, ok := w.Task(c.ID); !ok {
				return fmt.Errorf("no task %q", c.ID)
			}
			if w.SetActive(c.ID) == "" {
				fmt.Println("✓ No active task")
				return nil
			}
		}
		t, ok := w.ActiveTask()
		if !ok {
			fmt.Println("No active task.")
			return nil
		}
		fmt.Printf("%s %s\n", t.ID, t.Text)
		return nil
	})
}
