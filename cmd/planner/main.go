package main

import "github.com/studyplanner/planner/internal/cli"

// version is set via ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
