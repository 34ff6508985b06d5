package main

import (
	"os"

	"cropdoc/pkg/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
