package tasktree

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const idPrefix = "task-"

// FormatID builds a task id from a counter value and a wall-clock time.
// Ids are unique as long as the counter never repeats; the timestamp keeps
// ids distinct across data sets that were started independently.
func FormatID(counter uint64, t time.Time) string {
	return fmt.Sprintf("%s%d-%d", idPrefix, counter, t.UnixMilli())
}

// IDGen hands out task ids. It owns its counter and reads time through an
// injectable clock.
type IDGen struct {
	mu      sync.Mutex
	counter uint64
	now     func() time.Time
}

// NewIDGen returns a generator starting at counter 1. A nil clock means
// time.Now.
func NewIDGen(now func() time.Time) *IDGen {
	if now == nil {
		now = time.Now
	}
	return &IDGen{now: now}
}

// Next returns a fresh id.
func (g *IDGen) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return FormatID(g.counter, g.now())
}

// Seed advances the counter past every counter embedded in ids so that
// reloaded data can never collide with new ids.
func (g *IDGen) Seed(ids []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		if n, ok := parseCounter(id); ok && n > g.counter {
			g.counter = n
		}
	}
}

func parseCounter(id string) (uint64, bool) {
	rest, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return 0, false
	}
	num, _, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
