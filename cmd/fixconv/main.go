package main

import (
	"os"

	"github.com/wonny/fixconv/cmd/fixconv/commands"
)

// main is the entry point for the fixconv CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
