package importer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"pomodoro/internal/tasktree"
)

// TaskwarriorImporter reads `task export` output, either as a JSON array or
// as newline-delimited JSON. Dotted project names become nested parent
// tasks, so "home.garden" yields home > garden > task.
type TaskwarriorImporter struct{}

type taskwarriorTask struct {
	Description string `json:"description"`
	Status      string `json:"status"`
	Project     string `json:"project"`
	UUID        string `json:"uuid"`
}

func (t *TaskwarriorImporter) Name() string { return "taskwarrior" }

func (t *TaskwarriorImporter) Parse(reader io.Reader) ([]Item, error) {
	br := bufio.NewReader(reader)
	prefix, first, err := readFirstNonSpaceByte(br)
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty input")
		}
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	r := io.MultiReader(bytes.NewReader(prefix), br)
	var tasks []taskwarriorTask
	if first == '[' {
		tasks, err = decodeJSONArray(r)
	} else {
		tasks, err = decodeNDJSON(r)
	}
	if err != nil {
		return nil, err
	}
	return outline(tasks), nil
}

// projectNode is one level of the project hierarchy, keeping first-seen
// order for both subprojects and tasks.
type projectNode struct {
	name     string
	children []*projectNode
	index    map[string]*projectNode
	tasks    []Item
}

func (n *projectNode) child(name string) *projectNode {
	if c, ok := n.index[name]; ok {
		return c
	}
	c := &projectNode{name: name, index: map[string]*projectNode{}}
	n.index[name] = c
	n.children = append(n.children, c)
	return c
}

func outline(tasks []taskwarriorTask) []Item {
	root := &projectNode{index: map[string]*projectNode{}}
	for _, tw := range tasks {
		if tw.Status == "deleted" {
			continue
		}
		text := tasktree.ClampText(tw.Description)
		if text == "" {
			continue
		}
		node := root
		for _, part := range strings.Split(tw.Project, ".") {
			if part = strings.TrimSpace(part); part != "" {
				node = node.child(part)
			}
		}
		node.tasks = append(node.tasks, Item{Text: text, Done: tw.Status == "completed"})
	}

	var items []Item
	var flatten func(n *projectNode, depth int)
	flatten = func(n *projectNode, depth int) {
		for _, it := range n.tasks {
			it.Depth = depth
			items = append(items, it)
		}
		for _, c := range n.children {
			items = append(items, Item{Text: tasktree.ClampText(c.name), Depth: depth})
			flatten(c, depth+1)
		}
	}
	flatten(root, 0)
	return items
}

const maxNDJSONLineBytes = 4 << 20

func readFirstNonSpaceByte(r *bufio.Reader) ([]byte, byte, error) {
	var prefix []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && len(prefix) == 0 {
				return nil, 0, io.EOF
			}
			return prefix, 0, err
		}
		prefix = append(prefix, b)
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return prefix, b, nil
	}
}

func decodeJSONArray(r io.Reader) ([]taskwarriorTask, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON array: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("failed to parse JSON array: expected '['")
	}

	var tasks []taskwarriorTask
	for idx := 1; dec.More(); idx++ {
		var tw taskwarriorTask
		if err := dec.Decode(&tw); err != nil {
			return nil, fmt.Errorf("failed to decode task %d: %w", idx, err)
		}
		tasks = append(tasks, tw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse JSON array: %w", err)
	}
	return tasks, nil
}

func decodeNDJSON(r io.Reader) ([]taskwarriorTask, error) {
	br := bufio.NewReader(r)
	var tasks []taskwarriorTask
	lineNo := 0
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > maxNDJSONLineBytes {
			return nil, fmt.Errorf("taskwarrior NDJSON line %d exceeds %d bytes", lineNo+1, maxNDJSONLineBytes)
		}
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read NDJSON: %w", err)
		}
		if len(line) == 0 && err == io.EOF {
			break
		}
		lineNo++
		if line = bytes.TrimSpace(line); len(line) > 0 {
			var tw taskwarriorTask
			if uerr := json.Unmarshal(line, &tw); uerr != nil {
				return nil, fmt.Errorf("invalid JSON on line %d: %w", lineNo, uerr)
			}
			tasks = append(tasks, tw)
		}
		if err == io.EOF {
			break
		}
	}
	if lineNo == 0 {
		return nil, fmt.Errorf("empty input")
	}
	return tasks, nil
}
