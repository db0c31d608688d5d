// Command modalkeys is the command line of the modal keystroke engine.
package main

import "github.com/dshills/modalkeys/internal/cli"

// Build-time variables (set via ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.Execute(cli.BuildInfo{Version: version, Commit: commit, Date: date})
}
