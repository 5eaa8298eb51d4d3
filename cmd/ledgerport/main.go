package main

import (
	"os"

	"github.com/ledgerport-dev/ledgerport/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
