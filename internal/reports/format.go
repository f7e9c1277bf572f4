package reports

import (
	"encoding/json"
	"fmt"
	"strings"

	"pomodoro/internal/timer"
)

// FormatJSON formats a report as indented JSON.
func FormatJSON(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FormatMarkdown formats a report as a Markdown document with the task tree
// as a nested checklist.
func FormatMarkdown(r *Report) string {
	var b strings.Builder

	b.WriteString("# Pomodoro\n\n")
	fmt.Fprintf(&b, "_Generated %s_\n\n", r.GeneratedAt.Format("Mon Jan 2, 2006 15:04"))

	b.WriteString("## Timer\n\n")
	s := r.Settings
	fmt.Fprintf(&b, "- Work: %s min\n", timer.FormatMinutes(s.WorkSeconds))
	fmt.Fprintf(&b, "- Break: %s min\n", timer.FormatMinutes(s.BreakSeconds))
	fmt.Fprintf(&b, "- Long break: %s min\n", timer.FormatMinutes(s.LongBreakSeconds))
	fmt.Fprintf(&b, "- Sessions before long break: %d\n", s.SessionsBeforeLongBreak)
	fmt.Fprintf(&b, "- Sound: %s at %d%%\n\n", s.Sound, s.VolumePercent)

	t := r.Tasks
	fmt.Fprintf(&b, "## Tasks (%d/%d done)\n\n", t.CompletedCount, t.Total)
	if r.ActiveTask != nil {
		fmt.Fprintf(&b, "**Active:** %s\n\n", escape(r.ActiveTask.Text))
	}
	if t.Total == 0 {
		b.WriteString("_No tasks._\n")
		return b.String()
	}
	for _, e := range t.Tree {
		box := " "
		if e.Done {
			box = "x"
		}
		fmt.Fprintf(&b, "%s- [%s] %s\n", strings.Repeat("  ", e.Depth), box, escape(e.Text))
	}
	fmt.Fprintf(&b, "\n%d remaining, %.0f%% complete\n", t.PendingCount, t.CompletionRate)
	return b.String()
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

func escape(s string) string { return mdEscaper.Replace(s) }
