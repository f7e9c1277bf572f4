package ui

import (
	"testing"
	"time"

	"pomodoro/internal/config"
	"pomodoro/internal/storage"
	"pomodoro/internal/tasktree"
	"pomodoro/internal/timer"
	"pomodoro/internal/widget"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// setupTest disables colour output so rendered views are plain text.
func setupTest(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
}

// stillClock never ticks; the countdown stays where the test leaves it.
type stillClock struct{}

type stillTicker struct{ c chan time.Time }

func (stillClock) NewTicker(time.Duration) timer.Ticker {
	return &stillTicker{c: make(chan time.Time)}
}

func (t *stillTicker) C() <-chan time.Time { return t.c }
func (t *stillTicker) Stop()               {}

func newTestWidget(t *testing.T) *widget.Widget {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	w, err := widget.New(widget.Options{Store: store, Clock: stillClock{}})
	if err != nil {
		t.Fatalf("failed to create widget: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{})
}

func newTestApp(t *testing.T, cfg *AppConfig) (*App, *widget.Widget) {
	t.Helper()
	setupTest(t)
	w := newTestWidget(t)
	if cfg == nil {
		cfg = &AppConfig{Keys: &config.KeysConfig{}, ConfirmDeletions: true, Mouse: true, NarrowLayoutThreshold: 80}
	}
	app := NewApp(w, createTestStyles(), cfg, nil)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return app, w
}

// addTask adds a task through the widget and fails the test on error.
func addTask(t *testing.T, w *widget.Widget, text string, parent *tasktree.Task) tasktree.Task {
	t.Helper()
	var pid *string
	if parent != nil {
		pid = &parent.ID
	}
	task, err := w.Add(text, pid)
	if err != nil {
		t.Fatalf("Add(%q): %v", text, err)
	}
	return task
}

// drain runs cmd synchronously and feeds the resulting message back to app.
func drain(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		app.Update(msg)
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(app *App, s string) {
	for _, r := range s {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}
