// Command pomodoro is a terminal Pomodoro timer with a hierarchical task
// list.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// Version information, set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const description = "A Pomodoro timer with a nested task list for your terminal."

func versionInfo() string {
	return fmt.Sprintf("pomodoro %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pomodoro"),
		kong.Description(description),
		kong.Vars{"version": versionInfo()},
		kong.UsageOnError(),
		kong.Bind(&cli),
	)
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
