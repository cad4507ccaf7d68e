// Package main implements the rdflow CLI.
// It builds control flow graphs for single-function C sources and runs a
// reaching definitions analysis over them.
package main

import (
	"os"

	"github.com/l3aro/rdflow/cmd/rdflow/commands"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	commands.RootCmd.Version = version
	if buildTime != "" {
		commands.RootCmd.Version = version + " (" + buildTime + ")"
	}
	commands.RootCmd.SetVersionTemplate(`rdflow version {{.Version}}
`)

	err := commands.Execute()
	commands.Sync()
	if err != nil {
		os.Exit(1)
	}
}
