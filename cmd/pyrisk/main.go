// Package main implements the pyrisk CLI.
// It provides commands for scanning Python codebases, building dependency
// and call graphs, and querying risk and impact rankings.
package main

import (
	"fmt"
	"os"

	"github.com/pyrisk/pyrisk/cmd/pyrisk/commands"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	commands.RootCmd.Version = versionString()
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionString() string {
	if buildTime == "" {
		return version
	}
	return fmt.Sprintf("%s (built %s)", version, buildTime)
}
