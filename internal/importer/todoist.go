package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pomodoro/internal/tasktree"
)

// TodoistImporter reads Todoist CSV exports. The INDENT column (1-based)
// carries the subtask hierarchy.
type TodoistImporter struct{}

func (t *TodoistImporter) Name() string { return "todoist" }

func (t *TodoistImporter) Parse(reader io.Reader) ([]Item, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int)
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		cols[strings.ToUpper(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"TYPE", "CONTENT"} {
		if _, ok := cols[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	field := func(record []string, col string) string {
		idx, ok := cols[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var items []Item
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if !strings.EqualFold(field(record, "TYPE"), "task") {
			continue
		}
		text := tasktree.ClampText(field(record, "CONTENT"))
		if text == "" {
			continue
		}
		items = append(items, Item{
			Text:  text,
			Depth: todoistDepth(field(record, "INDENT")),
		})
	}
	return items, nil
}

// todoistDepth maps INDENT 1..n to depth 0..n-1. Missing or bad values are
// top level.
func todoistDepth(indent string) int {
	n, err := strconv.Atoi(indent)
	if err != nil || n < 1 {
		return 0
	}
	return n - 1
}
