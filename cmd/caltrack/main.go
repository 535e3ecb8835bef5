package main

import "github.com/andrewbrowne3/caltrack/cmd/caltrack/root"

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	root.Execute(version, commit, date)
}
